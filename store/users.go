package store

import (
	"offerpress/common"
	"offerpress/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserQueries is the only tenant-scoped bundle. Every operation filters by
// the factory's tenant id; a nil tenant matches tenant_id IS NULL rows only.
type UserQueries struct {
	db       *gorm.DB
	tenantID *int
	policy   Isolation
}

func (q *UserQueries) scoped() *gorm.DB {
	if q.policy != TenantScoped {
		return q.db
	}
	if q.tenantID == nil {
		return q.db.Where("tenant_id IS NULL")
	}
	return q.db.Where("tenant_id = ?", *q.tenantID)
}

func (q *UserQueries) GetByID(id int) (*models.User, error) {
	var user models.User
	err := q.scoped().First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (q *UserQueries) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := q.scoped().Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (q *UserQueries) GetAll() ([]models.User, error) {
	var users []models.User
	err := q.scoped().Order("id ASC").Find(&users).Error
	return users, translate(err, "user")
}

// Create hashes the password and stamps the factory's tenant id onto the row
// regardless of what the caller set.
func (q *UserQueries) Create(email, password, name, role string) (*models.User, error) {
	if email == "" {
		return nil, common.NewValidationError("email", "required")
	}
	if password == "" {
		return nil, common.NewValidationError("password", "required")
	}

	var existing models.User
	if err := q.scoped().Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, common.NewConflictError("user", "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		TenantID:     q.tenantID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	}
	if err := q.db.Create(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// Update applies a partial patch: only the provided fields are written.
// A "password" key is hashed before it reaches the row.
func (q *UserQueries) Update(id int, fields map[string]interface{}) (*models.User, error) {
	user, err := q.GetByID(id)
	if err != nil {
		return nil, err
	}

	if v, ok := fields["password"]; ok {
		delete(fields, "password")
		// decoded JSON can carry any type here
		pw, ok := v.(string)
		if !ok || pw == "" {
			return nil, common.NewValidationError("password", "must be a non-empty string")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = string(hash)
	}
	delete(fields, "tenant_id") // tenant ownership never changes through a patch

	if len(fields) == 0 {
		return user, nil
	}
	if err := q.db.Model(user).Updates(fields).Error; err != nil {
		return nil, translate(err, "user")
	}
	return q.GetByID(id)
}

func (q *UserQueries) Delete(id int) error {
	// load through the scope first so a foreign tenant's id deletes nothing
	user, err := q.GetByID(id)
	if err != nil {
		return err
	}
	return translate(q.db.Delete(user).Error, "user")
}

// CheckPassword verifies a candidate password against the stored hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
