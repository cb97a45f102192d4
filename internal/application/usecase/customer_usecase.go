package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// CustomerUseCase casos de uso CRUD para clientes.
type CustomerUseCase struct {
	repo repository.Repository[*entity.Customer]
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.Repository[*entity.Customer]) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

func (uc *CustomerUseCase) List() ([]*entity.Customer, error) {
	return uc.repo.List()
}

func (uc *CustomerUseCase) GetByID(id string) (*entity.Customer, error) {
	return uc.repo.GetByID(id)
}

func (uc *CustomerUseCase) Create(in dto.CreateCustomerRequest) (*entity.Customer, error) {
	customer := &entity.Customer{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
		Address: in.Address,
	}
	return uc.repo.Create(customer)
}

func (uc *CustomerUseCase) Update(id string, in dto.UpdateCustomerRequest) (*entity.Customer, error) {
	patch, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return uc.repo.Update(id, patch)
}

// Delete elimina un cliente. Las órdenes y cotizaciones que lo referencian
// conservan el ID; la capa HTTP lo resuelve como cliente eliminado.
func (uc *CustomerUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}
