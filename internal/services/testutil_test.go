package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests. It shares
// one store across sub-repositories so cross-entity flows (cascades,
// scope lookups) behave like the real thing.
type fakeRepository struct {
	store *fakeStore
}

type fakeStore struct {
	mu sync.Mutex

	users         map[uint]*models.User
	empresas      map[uint]*models.Empresa
	estudantes    map[uint]*models.Estudante
	departamentos map[uint]*models.Departamento
	scopes        map[uint][]uint          // gestor user ID -> departamento IDs
	estudanteDeps map[uint][]uint          // estudante ID -> departamento IDs
	favoritos     map[uint]map[uint]bool   // estudante ID -> proposta IDs
	propostas     map[uint]*models.Proposta
	candidaturas  map[uint]*models.Candidatura
	pedidos       map[uint]*models.PedidoRemocao

	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{store: &fakeStore{
		users:         make(map[uint]*models.User),
		empresas:      make(map[uint]*models.Empresa),
		estudantes:    make(map[uint]*models.Estudante),
		departamentos: make(map[uint]*models.Departamento),
		scopes:        make(map[uint][]uint),
		estudanteDeps: make(map[uint][]uint),
		favoritos:     make(map[uint]map[uint]bool),
		propostas:     make(map[uint]*models.Proposta),
		candidaturas:  make(map[uint]*models.Candidatura),
		pedidos:       make(map[uint]*models.PedidoRemocao),
	}}
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeRepository) User() repositories.UserRepository                   { return &fakeUserRepo{f.store} }
func (f *fakeRepository) Empresa() repositories.EmpresaRepository             { return &fakeEmpresaRepo{f.store} }
func (f *fakeRepository) Estudante() repositories.EstudanteRepository         { return &fakeEstudanteRepo{f.store} }
func (f *fakeRepository) Departamento() repositories.DepartamentoRepository   { return &fakeDepartamentoRepo{f.store} }
func (f *fakeRepository) Proposta() repositories.PropostaRepository           { return &fakePropostaRepo{f.store} }
func (f *fakeRepository) Candidatura() repositories.CandidaturaRepository     { return &fakeCandidaturaRepo{f.store} }
func (f *fakeRepository) PedidoRemocao() repositories.PedidoRemocaoRepository { return &fakePedidoRepo{f.store} }

func (f *fakeRepository) WithTransaction(_ context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepository) Ping(_ context.Context) error { return nil }
func (f *fakeRepository) Close() error                 { return nil }

// ===== SEED HELPERS =====

func (f *fakeRepository) seedUser(nome, email string, role models.UserRole) *models.User {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &models.User{ID: s.id(), Nome: nome, Email: email, Role: role}
	s.users[user.ID] = user
	return user
}

func (f *fakeRepository) seedEmpresa(userID uint, nome string, validada bool) *models.Empresa {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	empresa := &models.Empresa{ID: s.id(), UserID: userID, Nome: nome, Validada: validada}
	s.empresas[empresa.ID] = empresa
	return empresa
}

func (f *fakeRepository) seedEstudante(userID uint, nome, competencias string) *models.Estudante {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	estudante := &models.Estudante{ID: s.id(), UserID: userID, Nome: nome, Competencias: competencias}
	s.estudantes[estudante.ID] = estudante
	return estudante
}

func (f *fakeRepository) seedDepartamento(nome string) *models.Departamento {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	departamento := &models.Departamento{ID: s.id(), Nome: nome}
	s.departamentos[departamento.ID] = departamento
	return departamento
}

func (f *fakeRepository) seedProposta(empresaID uint, departamento string, estado models.PropostaEstado, areas []string) *models.Proposta {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	proposta := &models.Proposta{
		ID:           s.id(),
		EmpresaID:    empresaID,
		Departamento: departamento,
		Titulo:       "Proposta " + departamento,
		Estado:       estado,
		CreatedAt:    time.Now(),
	}
	_ = proposta.SetAreas(areas)
	if empresa, ok := s.empresas[empresaID]; ok {
		proposta.Empresa = *empresa
	}
	s.propostas[proposta.ID] = proposta
	return proposta
}

func (f *fakeRepository) assignScope(gestorID uint, departamentoIDs ...uint) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[gestorID] = departamentoIDs
}

func (f *fakeRepository) assignEstudanteDeps(estudanteID uint, departamentoIDs ...uint) {
	s := f.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estudanteDeps[estudanteID] = departamentoIDs
}

// ===== USER =====

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.id()
	r.s.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role models.UserRole) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var users []*models.User
	for _, user := range r.s.users {
		if user.Role == role {
			copied := *user
			users = append(users, &copied)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

// ===== EMPRESA =====

type fakeEmpresaRepo struct{ s *fakeStore }

func (r *fakeEmpresaRepo) Create(_ context.Context, empresa *models.Empresa) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	empresa.ID = r.s.id()
	r.s.empresas[empresa.ID] = empresa
	return nil
}

func (r *fakeEmpresaRepo) GetByID(_ context.Context, id uint) (*models.Empresa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	empresa, ok := r.s.empresas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *empresa
	return &copied, nil
}

func (r *fakeEmpresaRepo) GetByUserID(_ context.Context, userID uint) (*models.Empresa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, empresa := range r.s.empresas {
		if empresa.UserID == userID {
			copied := *empresa
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEmpresaRepo) SetValidada(_ context.Context, id uint, validada bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	empresa, ok := r.s.empresas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	empresa.Validada = validada
	return nil
}

func (r *fakeEmpresaRepo) ListPorValidar(_ context.Context) ([]*models.Empresa, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var empresas []*models.Empresa
	for _, empresa := range r.s.empresas {
		if !empresa.Validada {
			copied := *empresa
			empresas = append(empresas, &copied)
		}
	}
	return empresas, nil
}

// ===== ESTUDANTE =====

type fakeEstudanteRepo struct{ s *fakeStore }

func (r *fakeEstudanteRepo) Create(_ context.Context, estudante *models.Estudante) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	estudante.ID = r.s.id()
	r.s.estudantes[estudante.ID] = estudante
	return nil
}

func (r *fakeEstudanteRepo) GetByID(_ context.Context, id uint) (*models.Estudante, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	estudante, ok := r.s.estudantes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *estudante
	return &copied, nil
}

func (r *fakeEstudanteRepo) GetByUserID(_ context.Context, userID uint) (*models.Estudante, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, estudante := range r.s.estudantes {
		if estudante.UserID == userID {
			copied := *estudante
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEstudanteRepo) Update(_ context.Context, estudante *models.Estudante) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.estudantes[estudante.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *estudante
	r.s.estudantes[estudante.ID] = &copied
	return nil
}

func (r *fakeEstudanteRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.estudantes, id)
	return nil
}

func (r *fakeEstudanteRepo) AddFavorito(_ context.Context, estudanteID, propostaID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.favoritos[estudanteID] == nil {
		r.s.favoritos[estudanteID] = make(map[uint]bool)
	}
	r.s.favoritos[estudanteID][propostaID] = true
	return nil
}

func (r *fakeEstudanteRepo) RemoveFavorito(_ context.Context, estudanteID, propostaID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.favoritos[estudanteID], propostaID)
	return nil
}

func (r *fakeEstudanteRepo) ListFavoritos(_ context.Context, estudanteID uint) ([]*models.Proposta, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var propostas []*models.Proposta
	for propostaID := range r.s.favoritos[estudanteID] {
		if proposta, ok := r.s.propostas[propostaID]; ok {
			copied := *proposta
			propostas = append(propostas, &copied)
		}
	}
	sort.Slice(propostas, func(i, j int) bool { return propostas[i].ID < propostas[j].ID })
	return propostas, nil
}

func (r *fakeEstudanteRepo) ClearFavoritos(_ context.Context, estudanteID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.favoritos, estudanteID)
	return nil
}

func (r *fakeEstudanteRepo) DepartamentoIDs(_ context.Context, estudanteID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]uint(nil), r.s.estudanteDeps[estudanteID]...), nil
}

// ===== DEPARTAMENTO =====

type fakeDepartamentoRepo struct{ s *fakeStore }

func (r *fakeDepartamentoRepo) GetByID(_ context.Context, id uint) (*models.Departamento, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	departamento, ok := r.s.departamentos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *departamento
	return &copied, nil
}

func (r *fakeDepartamentoRepo) GetByIDs(_ context.Context, ids []uint) ([]*models.Departamento, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var departamentos []*models.Departamento
	for _, id := range ids {
		if departamento, ok := r.s.departamentos[id]; ok {
			copied := *departamento
			departamentos = append(departamentos, &copied)
		}
	}
	return departamentos, nil
}

func (r *fakeDepartamentoRepo) List(_ context.Context) ([]*models.Departamento, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var departamentos []*models.Departamento
	for _, departamento := range r.s.departamentos {
		copied := *departamento
		departamentos = append(departamentos, &copied)
	}
	sort.Slice(departamentos, func(i, j int) bool { return departamentos[i].ID < departamentos[j].ID })
	return departamentos, nil
}

func (r *fakeDepartamentoRepo) ScopeFor(_ context.Context, gestorID uint) ([]*models.GestorDepartamento, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var assignments []*models.GestorDepartamento
	for _, departamentoID := range r.s.scopes[gestorID] {
		assignment := &models.GestorDepartamento{GestorID: gestorID, DepartamentoID: departamentoID}
		if departamento, ok := r.s.departamentos[departamentoID]; ok {
			assignment.Departamento = *departamento
		}
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

func (r *fakeDepartamentoRepo) ReplaceScope(_ context.Context, gestorID uint, departamentoIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.scopes[gestorID] = append([]uint(nil), departamentoIDs...)
	return nil
}

// ===== PROPOSTA =====

type fakePropostaRepo struct{ s *fakeStore }

func (r *fakePropostaRepo) Create(_ context.Context, proposta *models.Proposta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	proposta.ID = r.s.id()
	proposta.CreatedAt = time.Now()
	copied := *proposta
	r.s.propostas[proposta.ID] = &copied
	return nil
}

func (r *fakePropostaRepo) GetByID(_ context.Context, id uint) (*models.Proposta, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	proposta, ok := r.s.propostas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *proposta
	if empresa, ok := r.s.empresas[proposta.EmpresaID]; ok {
		copied.Empresa = *empresa
	}
	return &copied, nil
}

func (r *fakePropostaRepo) Update(_ context.Context, proposta *models.Proposta) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.propostas[proposta.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *proposta
	r.s.propostas[proposta.ID] = &copied
	return nil
}

func (r *fakePropostaRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.propostas[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.propostas, id)
	return nil
}

func (r *fakePropostaRepo) List(_ context.Context, filters repositories.PropostaFilters) ([]*models.Proposta, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var propostas []*models.Proposta
	for _, proposta := range r.s.propostas {
		if filters.Estado != nil && proposta.Estado != *filters.Estado {
			continue
		}
		if filters.EmpresaID != nil && proposta.EmpresaID != *filters.EmpresaID {
			continue
		}
		if len(filters.Departamentos) > 0 {
			inScope := false
			for _, departamento := range filters.Departamentos {
				if proposta.Departamento == departamento {
					inScope = true
					break
				}
			}
			if !inScope && filters.GestorID != nil && proposta.GestorID != nil && *proposta.GestorID == *filters.GestorID {
				inScope = true
			}
			if !inScope {
				continue
			}
		}
		copied := *proposta
		propostas = append(propostas, &copied)
	}
	sort.Slice(propostas, func(i, j int) bool { return propostas[i].ID < propostas[j].ID })
	return propostas, int64(len(propostas)), nil
}

func (r *fakePropostaRepo) ListAtivas(_ context.Context) ([]*models.Proposta, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var propostas []*models.Proposta
	for _, proposta := range r.s.propostas {
		if proposta.Estado != models.PropostaAtiva {
			continue
		}
		empresa, ok := r.s.empresas[proposta.EmpresaID]
		if !ok || !empresa.Validada {
			continue
		}
		copied := *proposta
		copied.Empresa = *empresa
		propostas = append(propostas, &copied)
	}
	sort.Slice(propostas, func(i, j int) bool { return propostas[i].ID < propostas[j].ID })
	return propostas, nil
}

func (r *fakePropostaRepo) UpdateEstado(_ context.Context, id uint, estado models.PropostaEstado, ativaAte *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	proposta, ok := r.s.propostas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	proposta.Estado = estado
	proposta.AtivaAte = ativaAte
	return nil
}

func (r *fakePropostaRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var expired int64
	for _, proposta := range r.s.propostas {
		if proposta.Estado == models.PropostaAtiva && proposta.AtivaAte != nil && proposta.AtivaAte.Before(now) {
			proposta.Estado = models.PropostaInativa
			expired++
		}
	}
	return expired, nil
}

// ===== CANDIDATURA =====

type fakeCandidaturaRepo struct{ s *fakeStore }

func (r *fakeCandidaturaRepo) Create(_ context.Context, candidatura *models.Candidatura) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.candidaturas {
		if existing.EstudanteID == candidatura.EstudanteID && existing.PropostaID == candidatura.PropostaID {
			return gorm.ErrDuplicatedKey
		}
	}
	candidatura.ID = r.s.id()
	copied := *candidatura
	r.s.candidaturas[candidatura.ID] = &copied
	return nil
}

func (r *fakeCandidaturaRepo) GetByID(_ context.Context, id uint) (*models.Candidatura, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	candidatura, ok := r.s.candidaturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *candidatura
	if proposta, ok := r.s.propostas[candidatura.PropostaID]; ok {
		copied.Proposta = *proposta
	}
	if estudante, ok := r.s.estudantes[candidatura.EstudanteID]; ok {
		copied.Estudante = *estudante
	}
	return &copied, nil
}

func (r *fakeCandidaturaRepo) Update(_ context.Context, candidatura *models.Candidatura) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.candidaturas[candidatura.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *candidatura
	copied.Proposta = models.Proposta{}
	copied.Estudante = models.Estudante{}
	r.s.candidaturas[candidatura.ID] = &copied
	return nil
}

func (r *fakeCandidaturaRepo) Exists(_ context.Context, estudanteID, propostaID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, candidatura := range r.s.candidaturas {
		if candidatura.EstudanteID == estudanteID && candidatura.PropostaID == propostaID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCandidaturaRepo) List(_ context.Context, filters repositories.CandidaturaFilters) ([]*models.Candidatura, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var candidaturas []*models.Candidatura
	for _, candidatura := range r.s.candidaturas {
		if filters.Estado != nil && candidatura.Estado != *filters.Estado {
			continue
		}
		if filters.EstudanteID != nil && candidatura.EstudanteID != *filters.EstudanteID {
			continue
		}
		if filters.PropostaID != nil && candidatura.PropostaID != *filters.PropostaID {
			continue
		}
		copied := *candidatura
		if proposta, ok := r.s.propostas[candidatura.PropostaID]; ok {
			copied.Proposta = *proposta
		}
		candidaturas = append(candidaturas, &copied)
	}
	sort.Slice(candidaturas, func(i, j int) bool { return candidaturas[i].ID < candidaturas[j].ID })
	return candidaturas, int64(len(candidaturas)), nil
}

func (r *fakeCandidaturaRepo) ListByEmpresa(_ context.Context, empresaID uint, filters repositories.CandidaturaFilters) ([]*models.Candidatura, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var candidaturas []*models.Candidatura
	for _, candidatura := range r.s.candidaturas {
		proposta, ok := r.s.propostas[candidatura.PropostaID]
		if !ok || proposta.EmpresaID != empresaID {
			continue
		}
		if filters.Estado != nil && candidatura.Estado != *filters.Estado {
			continue
		}
		copied := *candidatura
		copied.Proposta = *proposta
		if estudante, ok := r.s.estudantes[candidatura.EstudanteID]; ok {
			copied.Estudante = *estudante
		}
		candidaturas = append(candidaturas, &copied)
	}
	sort.Slice(candidaturas, func(i, j int) bool { return candidaturas[i].ID < candidaturas[j].ID })
	return candidaturas, int64(len(candidaturas)), nil
}

func (r *fakeCandidaturaRepo) DeleteByEstudante(_ context.Context, estudanteID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, candidatura := range r.s.candidaturas {
		if candidatura.EstudanteID == estudanteID {
			delete(r.s.candidaturas, id)
		}
	}
	return nil
}

func (r *fakeCandidaturaRepo) DeleteByProposta(_ context.Context, propostaID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, candidatura := range r.s.candidaturas {
		if candidatura.PropostaID == propostaID {
			delete(r.s.candidaturas, id)
		}
	}
	return nil
}

func (r *fakeCandidaturaRepo) AggregatesByEmpresa(_ context.Context, empresaID uint, now time.Time) (*repositories.CandidaturaAggregates, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	aggregates := &repositories.CandidaturaAggregates{}
	var latencySum float64
	var responded int64
	cutoff := now.AddDate(0, 0, -30)

	for _, candidatura := range r.s.candidaturas {
		proposta, ok := r.s.propostas[candidatura.PropostaID]
		if !ok || proposta.EmpresaID != empresaID {
			continue
		}
		aggregates.Total++
		switch candidatura.Estado {
		case models.CandidaturaPendente:
			aggregates.Pendentes++
		case models.CandidaturaAceite:
			aggregates.Aceites++
		case models.CandidaturaRejeitada:
			aggregates.Rejeitadas++
		}
		if candidatura.SubmittedAt.After(cutoff) {
			aggregates.NovasUltimos30Dias++
		}
		if candidatura.RespondedAt != nil {
			latencySum += candidatura.RespondedAt.Sub(candidatura.SubmittedAt).Hours() / 24
			responded++
		}
	}

	if responded > 0 {
		media := latencySum / float64(responded)
		aggregates.MediaRespostaDias = &media
	}
	return aggregates, nil
}

// ===== PEDIDO REMOCAO =====

type fakePedidoRepo struct{ s *fakeStore }

func (r *fakePedidoRepo) Create(_ context.Context, pedido *models.PedidoRemocao) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pedido.ID = r.s.id()
	pedido.CreatedAt = time.Now()
	copied := *pedido
	r.s.pedidos[pedido.ID] = &copied
	return nil
}

func (r *fakePedidoRepo) GetByID(_ context.Context, id uint) (*models.PedidoRemocao, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pedido, ok := r.s.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *pedido
	if estudante, ok := r.s.estudantes[pedido.EstudanteID]; ok {
		copied.Estudante = *estudante
	}
	return &copied, nil
}

func (r *fakePedidoRepo) Update(_ context.Context, pedido *models.PedidoRemocao) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pedidos[pedido.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *pedido
	copied.Estudante = models.Estudante{}
	r.s.pedidos[pedido.ID] = &copied
	return nil
}

func (r *fakePedidoRepo) ExistsPendente(_ context.Context, estudanteID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, pedido := range r.s.pedidos {
		if pedido.EstudanteID == estudanteID && pedido.Estado == models.PedidoPendente {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePedidoRepo) List(_ context.Context, filters repositories.PedidoRemocaoFilters) ([]*models.PedidoRemocao, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var pedidos []*models.PedidoRemocao
	for _, pedido := range r.s.pedidos {
		if filters.Estado != nil && pedido.Estado != *filters.Estado {
			continue
		}
		if filters.EstudanteID != nil && pedido.EstudanteID != *filters.EstudanteID {
			continue
		}
		copied := *pedido
		pedidos = append(pedidos, &copied)
	}
	sort.Slice(pedidos, func(i, j int) bool { return pedidos[i].ID < pedidos[j].ID })
	return pedidos, int64(len(pedidos)), nil
}
