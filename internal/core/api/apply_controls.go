package api

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/subordinate/internal/core/auth"
	"github.com/solatis/subordinate/internal/core/db"
	"github.com/solatis/subordinate/internal/definition"
	"github.com/solatis/subordinate/internal/types"
)

type applyControlsRequest struct {
	RuleSetID  string                 `json:"rule_set_id"`
	Components []types.ComponentState `json:"components"`
	Bean       json.RawMessage        `json:"bean,omitempty"`
}

type applyControlsResponse struct {
	EvaluationID   types.EvaluationID       `json:"evaluation_id"`
	Components     []types.ComponentState   `json:"components"`
	Outcomes       []definition.RuleOutcome `json:"outcomes"`
	RulesApplied   int                      `json:"rules_applied"`
	ActionsApplied int                      `json:"actions_applied"`
}

// ApplyControls applies one of the tenant's stored rule sets to the given
// component states and returns the resulting states.
//
//	request:  {rule_set_id, components: [{id, label, value, disabled,
//	          hidden, mandatory, bind}], bean?}
//	response: {evaluation_id, components, outcomes: [{rule, condition,
//	          result, actions_applied}], rules_applied, actions_applied}
func (s *Service) ApplyControls(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		return nil, status.Error(codes.Internal, "missing tenant_id in context")
	}

	var req applyControlsRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	id, err := types.ParseRuleSetID(req.RuleSetID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid rule_set_id %q", req.RuleSetID)
	}
	if err := ctx.Err(); err != nil {
		return nil, toStatus(err)
	}

	set, err := s.store.GetRuleSet(tenantID, id)
	if err != nil {
		return nil, toStatus(err)
	}

	res, err := definition.Apply(set, req.Components, req.Bean)
	if err != nil {
		s.log.Debug().Err(err).Str("tenant_id", tenantID).Str("rule_set_id", string(id)).Msg("apply failed")
		return nil, toStatus(err)
	}

	eval := &db.Evaluation{
		TenantID:       tenantID,
		RuleSetID:      id,
		Components:     len(req.Components),
		RulesApplied:   len(res.Outcomes),
		ActionsApplied: res.ActionsApplied,
	}
	if err := s.store.RecordEvaluation(eval); err != nil {
		s.log.Error().Err(err).Str("tenant_id", tenantID).Str("rule_set_id", string(id)).Msg("failed to record evaluation")
		return nil, toStatus(err)
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Str("rule_set_id", string(id)).
		Str("evaluation_id", string(eval.ID)).
		Int("rules_applied", eval.RulesApplied).
		Int("actions_applied", eval.ActionsApplied).
		Msg("controls applied")

	return encode(applyControlsResponse{
		EvaluationID:   eval.ID,
		Components:     res.Components,
		Outcomes:       res.Outcomes,
		RulesApplied:   eval.RulesApplied,
		ActionsApplied: eval.ActionsApplied,
	})
}
