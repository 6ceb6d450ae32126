package repository

import (
	"errors"

	"github.com/lshigami/quizx/internal/model"
	"gorm.io/gorm"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

type AccountRepository interface {
	Create(account *model.Account) error
	FindByID(id string) (*model.Account, error)
	FindByEmail(email string) (*model.Account, error)
	FindBySubject(provider, subject string) (*model.Account, error)
	Update(account *model.Account) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *model.Account) error {
	return r.db.Create(account).Error
}

func (r *accountRepository) FindByID(id string) (*model.Account, error) {
	var account model.Account
	return r.first(r.db.Where("id = ?", id), &account)
}

func (r *accountRepository) FindByEmail(email string) (*model.Account, error) {
	var account model.Account
	return r.first(r.db.Where("email = ?", email), &account)
}

func (r *accountRepository) FindBySubject(provider, subject string) (*model.Account, error) {
	var account model.Account
	return r.first(r.db.Where("provider = ? AND subject = ?", provider, subject), &account)
}

func (r *accountRepository) Update(account *model.Account) error {
	return r.db.Save(account).Error
}

func (r *accountRepository) first(q *gorm.DB, account *model.Account) (*model.Account, error) {
	if err := q.First(account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
