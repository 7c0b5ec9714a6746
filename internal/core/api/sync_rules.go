package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/subordinate/internal/core/auth"
	"github.com/solatis/subordinate/internal/core/db"
)

type syncRulesRequest struct {
	IfNoneMatch string `json:"if_none_match,omitempty"`
}

type syncedRuleSet struct {
	storedRuleSet
	Definition string `json:"definition"`
}

type syncRulesResponse struct {
	ETag        string          `json:"etag"`
	NotModified bool            `json:"not_modified"`
	RuleSets    []syncedRuleSet `json:"rule_sets"`
}

// SyncRules returns every rule set of the tenant with an ETag. When the
// request's if_none_match equals the current ETag the sets are omitted and
// not_modified is true.
//
//	request:  {if_none_match?}
//	response: {etag, not_modified, rule_sets: [{id, name, rule_count,
//	          created_at, updated_at, definition}]}
func (s *Service) SyncRules(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	tenantID := auth.TenantIDFromContext(ctx)
	if tenantID == "" {
		return nil, status.Error(codes.Internal, "missing tenant_id in context")
	}

	var req syncRulesRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	recs, err := s.store.ListRuleSets(tenantID)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := syncRulesResponse{ETag: computeETag(recs), RuleSets: []syncedRuleSet{}}
	if req.IfNoneMatch != "" && req.IfNoneMatch == resp.ETag {
		resp.NotModified = true
		return encode(resp)
	}

	for _, r := range recs {
		resp.RuleSets = append(resp.RuleSets, syncedRuleSet{
			storedRuleSet: storedRuleSet{
				ID:        string(r.ID),
				Name:      r.Name,
				RuleCount: r.RuleCount,
				CreatedAt: timestamp(r.CreatedAt),
				UpdatedAt: timestamp(r.UpdatedAt),
			},
			Definition: r.Definition,
		})
	}
	return encode(resp)
}

// computeETag hashes the sorted set IDs with their update times, so any
// stored change yields a new ETag.
func computeETag(recs []db.RuleSetRecord) string {
	keys := make([]string, 0, len(recs))
	for _, r := range recs {
		keys = append(keys, string(r.ID)+":"+r.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
