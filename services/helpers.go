package services

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/storage"
)

func generateRandomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	randomBytes := make([]byte, length)
	_, err := rand.Read(randomBytes)
	if err != nil {
		for i := range b {
			b[i] = charset[int(time.Now().UnixNano())%len(charset)]
		}
		return string(b)
	}
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}

func populateUserDetailsFunc(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = ""
	if user.AvatarKey != nil && *user.AvatarKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*user.AvatarKey)
		if url != "" {
			user.AvatarURL = &url
		}
	}
}

func populateTeamCrestURLFunc(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.CrestKey != nil && *team.CrestKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.CrestKey)
		if url != "" {
			team.CrestURL = &url
		}
	}
}

func populateStadiumPhotoURLFunc(stadium *models.Stadium, uploader storage.FileUploader) {
	if stadium != nil && stadium.PhotoKey != nil && *stadium.PhotoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*stadium.PhotoKey)
		if url != "" {
			stadium.PhotoURL = &url
		}
	}
}

func populateMatchDetailsFunc(match *models.Match, uploader storage.FileUploader) {
	if match == nil {
		return
	}
	populateTeamCrestURLFunc(match.Home, uploader)
	populateTeamCrestURLFunc(match.Away, uploader)
	populateStadiumPhotoURLFunc(match.Stadium, uploader)
}

// GetExtensionFromContentType maps an uploaded image's content type to a
// file extension for the storage key.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
