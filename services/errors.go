package services

import "errors"

// Shared sentinel errors, mapped to HTTP statuses in the handlers layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Predictions
	ErrPredictionIDRequired       = errors.New("prediction has no backing record to save to")
	ErrPredictionNotSubmittable   = errors.New("prediction is not complete enough to submit")
	ErrPredictionScoreInvalid     = errors.New("prediction scores must be between 0 and 99")
	ErrPredictionExtraTimeInvalid = errors.New("extra-time scores must be at least the regular-time scores")
	ErrPredictionExtraNotAllowed  = errors.New("extra-time and penalty fields are not allowed for group-stage matches")
	ErrPredictionPhaseMismatch    = errors.New("prediction does not belong to the requested phase")
	ErrPredictionLocked           = errors.New("predictions for this match are locked")

	// Matches
	ErrMatchInvalidPhase     = errors.New("invalid match phase")
	ErrMatchInvalidResult    = errors.New("match result violates the scoring invariants")
	ErrMatchNotCompleted     = errors.New("match has no completed result to score")
	ErrMatchAlreadyCompleted = errors.New("match result has already been recorded")

	// Leagues
	ErrLeagueNameRequired = errors.New("league name is required")
	ErrLeagueCodeInvalid  = errors.New("invalid league join code")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Auth service specifics
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")

	// Entity-specific not-found errors for richer context
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrStadiumNotFound    = errors.New("stadium not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrLeagueNotFound     = errors.New("league not found")

	// Conflicts
	ErrUserEmailConflict        = errors.New("email address is already in use")
	ErrUserNicknameConflict     = errors.New("nickname is already in use")
	ErrTeamNameConflict         = errors.New("team name is already in use")
	ErrLeagueNameConflict       = errors.New("league name is already in use")
	ErrLeagueMembershipConflict = errors.New("user is already a member of this league")
)
