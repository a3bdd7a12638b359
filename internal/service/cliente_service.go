package service

import (
	"context"

	"github.com/mauropillox/chorilocal-sub000/internal/apierror"
	"github.com/mauropillox/chorilocal-sub000/internal/dto"
	"github.com/mauropillox/chorilocal-sub000/internal/model"
	"github.com/mauropillox/chorilocal-sub000/internal/repository"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*model.Cliente, error)
	Listar(ctx context.Context) ([]model.Cliente, error)
	Actualizar(ctx context.Context, id int64, req dto.ActualizarClienteRequest) (*model.Cliente, error)
	Desactivar(ctx context.Context, id int64) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*model.Cliente, error) {
	c := &model.Cliente{
		Nombre:    req.Nombre,
		Telefono:  req.Telefono,
		Direccion: req.Direccion,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.Unexpected(err)
	}
	return c, nil
}

func (s *clienteService) Listar(ctx context.Context) ([]model.Cliente, error) {
	clientes, err := s.repo.List(ctx)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	return clientes, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id int64, req dto.ActualizarClienteRequest) (*model.Cliente, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "Cliente %d no encontrado", id)
	}
	if req.Nombre != "" {
		c.Nombre = req.Nombre
	}
	if req.Telefono != "" {
		c.Telefono = req.Telefono
	}
	if req.Direccion != "" {
		c.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, apierror.Unexpected(err)
	}
	return c, nil
}

func (s *clienteService) Desactivar(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapNotFound(err, "Cliente %d no encontrado", id)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.Unexpected(err)
	}
	return nil
}
