package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

// ClientUseCase casos de uso de cadastro de clientes.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase constrói o caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Create cria um novo cliente. CNPJ duplicado é rejeitado.
func (uc *ClientUseCase) Create(in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, _ := uc.repo.GetByTaxID(in.TaxID)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	client := &entity.Client{
		ID:           uuid.New().String(),
		Name:         in.Name,
		TaxID:        in.TaxID,
		BillingEmail: in.BillingEmail,
		UnitsInStock: in.UnitsInStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.StorageStartDate != "" {
		d, err := time.Parse("2006-01-02", in.StorageStartDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		client.StorageStartDate = d
	}
	if err := uc.repo.Create(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Get busca um cliente por ID.
func (uc *ClientUseCase) Get(id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return toClientResponse(client), nil
}

// List lista clientes com paginação.
func (uc *ClientUseCase) List(limit, offset int) ([]*dto.ClientResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// Update atualiza o cadastro; o estoque declarado alimenta a linha de
// armazenagem da próxima cobrança.
func (uc *ClientUseCase) Update(id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	client.Name = in.Name
	client.TaxID = in.TaxID
	client.BillingEmail = in.BillingEmail
	client.UnitsInStock = in.UnitsInStock
	if in.StorageStartDate != "" {
		d, err := time.Parse("2006-01-02", in.StorageStartDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		client.StorageStartDate = d
	}
	client.UpdatedAt = time.Now()
	if err := uc.repo.Update(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Delete remove um cliente.
func (uc *ClientUseCase) Delete(id string) error {
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if client == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	resp := &dto.ClientResponse{
		ID:           c.ID,
		Name:         c.Name,
		TaxID:        c.TaxID,
		BillingEmail: c.BillingEmail,
		UnitsInStock: c.UnitsInStock,
	}
	if !c.StorageStartDate.IsZero() {
		resp.StorageStartDate = c.StorageStartDate.Format("2006-01-02")
	}
	return resp
}
