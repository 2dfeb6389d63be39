package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

// Estatisticas derives the empresa dashboard from the raw candidatura
// aggregates: counts per estado, new applicants over the last 30 days, an
// acceptance rate that is zero-safe, and the mean response latency
// formatted in days ("0 dias" when nothing has been responded to yet).
func (s *dashboardService) Estatisticas(ctx context.Context, actor Actor) (*EmpresaStatsResponse, error) {
	empresa, err := s.empresaFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.repo.Candidatura().AggregatesByEmpresa(ctx, empresa.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to load candidatura aggregates: %w", err)
	}

	return buildStats(aggregates), nil
}

// ExportEstatisticas renders the dashboard numbers as a one-sheet xlsx
// workbook.
func (s *dashboardService) ExportEstatisticas(ctx context.Context, actor Actor) ([]byte, string, error) {
	empresa, err := s.empresaFor(ctx, actor)
	if err != nil {
		return nil, "", err
	}

	aggregates, err := s.repo.Candidatura().AggregatesByEmpresa(ctx, empresa.ID, time.Now())
	if err != nil {
		return nil, "", fmt.Errorf("failed to load candidatura aggregates: %w", err)
	}
	stats := buildStats(aggregates)

	file := excelize.NewFile()
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Warn("Failed to close xlsx file", "error", err)
		}
	}()

	const sheet = "Estatisticas"
	index, err := file.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("Failed to remove default sheet", "error", err)
	}

	rows := [][]interface{}{
		{"Empresa", empresa.Nome},
		{"Gerado em", time.Now().Format("2006-01-02 15:04")},
		{},
		{"Total de candidaturas", stats.TotalCandidaturas},
		{"Pendentes", stats.Pendentes},
		{"Aceites", stats.Aceites},
		{"Rejeitadas", stats.Rejeitadas},
		{"Novas (ultimos 30 dias)", stats.NovasUltimos30Dias},
		{"Taxa de aceitacao", fmt.Sprintf("%.1f%%", stats.TaxaAceitacao*100)},
		{"Tempo medio de resposta", stats.TempoMedioResposta},
	}
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, "", fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render xlsx: %w", err)
	}

	filename := fmt.Sprintf("estatisticas-empresa-%d-%s.xlsx", empresa.ID, time.Now().Format("20060102"))
	s.logger.Info("Estatisticas exported", "empresa_id", empresa.ID, "bytes", buffer.Len())
	return buffer.Bytes(), filename, nil
}

func (s *dashboardService) empresaFor(ctx context.Context, actor Actor) (*models.Empresa, error) {
	if actor.Role != models.RoleEmpresa {
		return nil, NewPermissionError(actor.UserID, 0, "estatisticas", "read", "empresa-only operation")
	}
	empresa, err := s.repo.Empresa().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmpresaNotFound
		}
		return nil, fmt.Errorf("failed to load empresa profile: %w", err)
	}
	return empresa, nil
}

func buildStats(a *repositories.CandidaturaAggregates) *EmpresaStatsResponse {
	stats := &EmpresaStatsResponse{
		TotalCandidaturas:  a.Total,
		Pendentes:          a.Pendentes,
		Aceites:            a.Aceites,
		Rejeitadas:         a.Rejeitadas,
		NovasUltimos30Dias: a.NovasUltimos30Dias,
		TempoMedioResposta: "0 dias",
	}

	// aceite / total, 0 when there are no candidaturas at all
	if a.Total > 0 {
		stats.TaxaAceitacao = float64(a.Aceites) / float64(a.Total)
	}
	if a.MediaRespostaDias != nil {
		stats.TempoMedioResposta = fmt.Sprintf("%.1f dias", *a.MediaRespostaDias)
	}
	return stats
}
