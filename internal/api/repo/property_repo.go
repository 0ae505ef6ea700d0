package repo

import (
	"upkeep"
	"upkeep/internal/api/models"

	"gorm.io/gorm"
)

type PropertyRepository struct {
	Db *gorm.DB
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{Db: upkeep.DB}
}

func (slf *PropertyRepository) FindByID(id string) (models.Property, error) {
	var property models.Property
	err := slf.Db.Where("id = ?", id).First(&property).Error
	return property, err
}

func (slf *PropertyRepository) GetAll() ([]models.Property, error) {
	var properties []models.Property
	err := slf.Db.Order("name ASC").Find(&properties).Error
	return properties, err
}

func (slf *PropertyRepository) Create(property *models.Property) error {
	return slf.Db.Create(property).Error
}

func (slf *PropertyRepository) Update(property *models.Property) error {
	return slf.Db.Save(property).Error
}
