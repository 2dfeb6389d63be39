package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type matchingService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewMatchingService(repo repositories.Repository, logger *slog.Logger) MatchingService {
	return &matchingService{repo: repo, logger: logger}
}

// MatchesFor computes the matching-engine output for the acting student:
// every ativa proposta (of a validated empresa) whose area tags overlap the
// student's competencias. Results are recomputed on every call.
func (s *matchingService) MatchesFor(ctx context.Context, actor Actor) ([]*MatchResponse, error) {
	if actor.Role != models.RoleEstudante {
		return nil, NewPermissionError(actor.UserID, 0, "matching", "read", "matching is a estudante operation")
	}

	estudante, err := s.repo.Estudante().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEstudanteNotFound
		}
		return nil, fmt.Errorf("failed to load estudante profile: %w", err)
	}

	skills := normalizeTokens(estudante.Competencias)
	if len(skills) == 0 {
		return []*MatchResponse{}, nil
	}

	propostas, err := s.repo.Proposta().ListAtivas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ativa propostas: %w", err)
	}

	matches := make([]*MatchResponse, 0)
	for _, proposta := range propostas {
		matched := matchedAreas(skills, proposta.AreaList())
		if len(matched) == 0 {
			continue
		}
		matches = append(matches, &MatchResponse{
			Proposta:     toPropostaResponse(proposta),
			MatchedAreas: matched,
		})
	}

	s.logger.Debug("Matching computed",
		"estudante_id", estudante.ID, "skills", len(skills), "matches", len(matches))
	return matches, nil
}

// normalizeTokens splits a comma-delimited skill string into lower-cased
// trimmed tokens, dropping empties.
func normalizeTokens(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// matchedAreas returns the proposta areas that match any student skill.
// A match is exact token equality or substring containment in either
// direction: "node" matches "node.js", and "java" matches "javascript".
func matchedAreas(skills, areas []string) []string {
	matched := make([]string, 0)
	for _, area := range areas {
		normalized := strings.ToLower(strings.TrimSpace(area))
		if normalized == "" {
			continue
		}
		for _, skill := range skills {
			if tokensMatch(skill, normalized) {
				matched = append(matched, area)
				break
			}
		}
	}
	return matched
}

func tokensMatch(skill, area string) bool {
	if skill == area {
		return true
	}
	return strings.Contains(skill, area) || strings.Contains(area, skill)
}
