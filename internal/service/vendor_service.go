package service

import (
	"context"

	"github.com/TheYates/bernat-medical-sub000/internal/dto"
	"github.com/TheYates/bernat-medical-sub000/internal/model"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"github.com/google/uuid"
)

// VendorService manages suppliers. Vendors are deactivated, never deleted,
// so past stock transactions keep a valid reference.
type VendorService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateVendorRequest) (*dto.VendorResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.VendorResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.VendorResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateVendorRequest) (*dto.VendorResponse, error)
	SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error
}

type vendorService struct {
	repo  repository.VendorRepository
	audit AuditService
}

func NewVendorService(repo repository.VendorRepository, audit AuditService) VendorService {
	return &vendorService{repo: repo, audit: audit}
}

func (s *vendorService) Create(ctx context.Context, actor Actor, req dto.CreateVendorRequest) (*dto.VendorResponse, error) {
	v := &model.Vendor{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Active:        true,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, classify(err, "Vendor")
	}
	s.audit.Record(ctx, actor, AuditVendorChanged, "vendor", &v.ID, map[string]interface{}{"created": v.Name})
	return vendorToResponse(v), nil
}

func (s *vendorService) GetByID(ctx context.Context, id uuid.UUID) (*dto.VendorResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "Vendor")
	}
	return vendorToResponse(v), nil
}

func (s *vendorService) List(ctx context.Context, includeInactive bool) ([]dto.VendorResponse, error) {
	list, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VendorResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *vendorToResponse(&list[i]))
	}
	return resp, nil
}

func (s *vendorService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateVendorRequest) (*dto.VendorResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, "Vendor")
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.ContactPerson != nil {
		v.ContactPerson = req.ContactPerson
	}
	if req.Phone != nil {
		v.Phone = req.Phone
	}
	if req.Email != nil {
		v.Email = req.Email
	}
	if req.Address != nil {
		v.Address = req.Address
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, classify(err, "Vendor")
	}
	s.audit.Record(ctx, actor, AuditVendorChanged, "vendor", &v.ID, req)
	return vendorToResponse(v), nil
}

func (s *vendorService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return classify(err, "Vendor")
	}
	s.audit.Record(ctx, actor, AuditVendorChanged, "vendor", &id, map[string]interface{}{"active": active})
	return nil
}

func vendorToResponse(v *model.Vendor) *dto.VendorResponse {
	return &dto.VendorResponse{
		ID:            v.ID.String(),
		Name:          v.Name,
		ContactPerson: v.ContactPerson,
		Phone:         v.Phone,
		Email:         v.Email,
		Address:       v.Address,
		Active:        v.Active,
	}
}
