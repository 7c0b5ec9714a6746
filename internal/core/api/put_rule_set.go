package api

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/subordinate/internal/core/auth"
	"github.com/solatis/subordinate/internal/definition"
)

type putRuleSetRequest struct {
	Definition string `json:"definition"`
}

type storedRuleSet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RuleCount int    `json:"rule_count"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type putRuleSetResponse struct {
	RuleSets []storedRuleSet `json:"rule_sets"`
}

// PutRuleSet stores every rule set of a YAML definition. Sets with an ID
// replace the tenant's existing set; others get a new ID. The sets are
// stored in one transaction, so a rejected request stores nothing.
//
//	request:  {definition: "<yaml>"}
//	response: {rule_sets: [{id, name, rule_count, created_at, updated_at}]}
func (s *Service) PutRuleSet(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		return nil, status.Error(codes.Internal, "missing tenant_id in context")
	}

	var req putRuleSetRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if req.Definition == "" {
		return nil, status.Error(codes.InvalidArgument, "definition required")
	}

	sets, err := definition.Parse([]byte(req.Definition))
	if err != nil {
		return nil, toStatus(err)
	}
	recs, err := s.store.SaveRuleSets(tenantID, sets)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := putRuleSetResponse{RuleSets: make([]storedRuleSet, 0, len(recs))}
	for _, rec := range recs {
		resp.RuleSets = append(resp.RuleSets, storedRuleSet{
			ID:        string(rec.ID),
			Name:      rec.Name,
			RuleCount: rec.RuleCount,
			CreatedAt: timestamp(rec.CreatedAt),
			UpdatedAt: timestamp(rec.UpdatedAt),
		})
		s.log.Info().Str("tenant_id", tenantID).Str("rule_set_id", string(rec.ID)).Int("rules", rec.RuleCount).Msg("rule set stored")
	}

	return encode(resp)
}
