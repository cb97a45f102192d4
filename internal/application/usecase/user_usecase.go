package usecase

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/chabs-app/chabs-api/internal/application/dto"
	"github.com/chabs-app/chabs-api/internal/domain"
	"github.com/chabs-app/chabs-api/internal/domain/entity"
	"github.com/chabs-app/chabs-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (solo admin). El registro y el login
// viven en el paquete auth.
type UserUseCase struct {
	repo repository.Repository[*entity.User]
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repo repository.Repository[*entity.User]) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// List lista los usuarios sin exponer hashes.
func (uc *UserUseCase) List() ([]dto.UserResponse, error) {
	users, err := uc.repo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.ToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario; (nil, nil) si no existe.
func (uc *UserUseCase) GetByID(id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	out := dto.ToUserResponse(user)
	return &out, nil
}

// Update aplica un patch parcial (email, nombre, rol, estado).
func (uc *UserUseCase) Update(id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if in.Role != nil && !entity.ValidRole(*in.Role) {
		return nil, fmt.Errorf("%w: rol desconocido: %q", domain.ErrValidation, *in.Role)
	}
	patch, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	user, err := uc.repo.Update(id, patch)
	if err != nil {
		return nil, err
	}
	out := dto.ToUserResponse(user)
	return &out, nil
}

// ChangePassword reemplaza el hash de contraseña de un usuario.
func (uc *UserUseCase) ChangePassword(id, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password es requerido", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	patch, err := json.Marshal(map[string]string{"password_hash": string(hash)})
	if err != nil {
		return err
	}
	_, err = uc.repo.Update(id, patch)
	return err
}

// Delete elimina un usuario.
func (uc *UserUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}
