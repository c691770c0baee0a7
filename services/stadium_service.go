package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/repositories"
	"github.com/porraza/porraza-server/storage"
)

type StadiumService interface {
	Create(ctx context.Context, stadium *models.Stadium) (*models.Stadium, error)
	GetByID(ctx context.Context, id int) (*models.Stadium, error)
	List(ctx context.Context) ([]*models.Stadium, error)
	UploadPhoto(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Stadium, error)
}

type stadiumService struct {
	stadiumRepo repositories.StadiumRepository
	uploader    storage.FileUploader
}

func NewStadiumService(stadiumRepo repositories.StadiumRepository, uploader storage.FileUploader) StadiumService {
	return &stadiumService{stadiumRepo: stadiumRepo, uploader: uploader}
}

func (s *stadiumService) Create(ctx context.Context, stadium *models.Stadium) (*models.Stadium, error) {
	if stadium.Name == "" || stadium.City == "" {
		return nil, fmt.Errorf("%w: stadium name and city are required", ErrValidationFailed)
	}
	if err := s.stadiumRepo.Create(ctx, stadium); err != nil {
		return nil, err
	}
	return stadium, nil
}

func (s *stadiumService) GetByID(ctx context.Context, id int) (*models.Stadium, error) {
	stadium, err := s.stadiumRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStadiumNotFound) {
			return nil, ErrStadiumNotFound
		}
		return nil, err
	}
	populateStadiumPhotoURLFunc(stadium, s.uploader)
	return stadium, nil
}

func (s *stadiumService) List(ctx context.Context) ([]*models.Stadium, error) {
	stadiums, err := s.stadiumRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, stadium := range stadiums {
		populateStadiumPhotoURLFunc(stadium, s.uploader)
	}
	return stadiums, nil
}

func (s *stadiumService) UploadPhoto(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Stadium, error) {
	stadium, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("stadiums/%d/photo%s", id, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo for stadium %d: %w", id, err)
	}

	if err := s.stadiumRepo.UpdatePhotoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	stadium.PhotoKey = &result.Key
	stadium.PhotoURL = &result.Location
	return stadium, nil
}
