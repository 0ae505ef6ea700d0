package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"upkeep"
	"upkeep/internal/api/models"
	"upkeep/internal/api/repo"
)

// PrefWriter stores per-user notification preferences. *cache.Store
// satisfies it.
type PrefWriter interface {
	ReadPreferences(userID string) (models.NotificationPrefs, bool)
	WritePreferences(userID string, prefs models.NotificationPrefs)
}

type UserService struct {
	userRepo *repo.UserRepository
	prefs    PrefWriter
	logger   zerolog.Logger
}

func NewUserService(prefs PrefWriter) *UserService {
	return &UserService{
		userRepo: repo.NewUserRepository(),
		prefs:    prefs,
		logger:   upkeep.Logger,
	}
}

type CreateUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.UserRole
}

func (slf *UserService) Create(req CreateUser) (*models.User, error) {
	exists, err := slf.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error checking if user exists")
		return nil, err
	}
	if exists {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleTechnician
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      role,
		Active:    true,
	}

	if err = slf.userRepo.Create(&user); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating user")
		return nil, err
	}
	return &user, nil
}

func (slf *UserService) FindAll() ([]models.User, error) {
	return slf.userRepo.GetAll()
}

func (slf *UserService) FindByID(id string) (*models.User, error) {
	user, err := slf.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (slf *UserService) Technicians() ([]models.User, error) {
	return slf.userRepo.FindByRole(models.RoleTechnician)
}

func (slf *UserService) Deactivate(id string) error {
	user, err := slf.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return err
	}
	user.Active = false
	return slf.userRepo.Update(&user)
}

// Preferences returns the stored notification preferences for a user,
// falling back to the defaults when none were ever saved.
func (slf *UserService) Preferences(userID string) models.NotificationPrefs {
	prefs, ok := slf.prefs.ReadPreferences(userID)
	if !ok {
		return models.DefaultNotificationPrefs()
	}
	return prefs
}

// UpdatePreferences stores a full preference record for a user.
func (slf *UserService) UpdatePreferences(userID string, prefs models.NotificationPrefs) {
	slf.prefs.WritePreferences(userID, prefs)
}
