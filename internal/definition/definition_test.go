package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/subordinate/internal/components"
	"github.com/solatis/subordinate/internal/types"
)

func loadAddress(t *testing.T) []*types.RuleSet {
	t.Helper()
	sets, err := Load("testdata/address.yaml")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	return sets
}

func addressRegistry(t *testing.T, country, postcode string) *components.Registry {
	t.Helper()
	reg, err := components.NewRegistryFromStates([]types.ComponentState{
		{ID: "country", Label: "Country", Value: country},
		{ID: "postcode", Label: "Postcode", Value: postcode},
		{ID: "state", Hidden: true},
		{ID: "province"},
		{ID: "county"},
		{ID: "submit"},
	})
	require.NoError(t, err)
	return reg
}

func TestLoad(t *testing.T) {
	sets := loadAddress(t)

	address := sets[0]
	assert.Equal(t, types.RuleSetID("0190f5a4-7c2e-7b1a-9d3e-2f6a8b4c1d07"), address.ID)
	assert.Equal(t, []string{"state", "province", "county"}, address.Groups["region_fields"])
	require.Len(t, address.Rules, 3)

	postcode := address.Rules[2]
	require.Len(t, postcode.Condition, 5)
	assert.Equal(t, types.TokenCompare, postcode.Condition[0].Kind)
	assert.Equal(t, types.CompareMatches, postcode.Condition[0].Compare)
	assert.Equal(t, `^\d{4}$`, postcode.Condition[0].Value)
	assert.Equal(t, types.TokenOr, postcode.Condition[1].Kind)
	assert.Equal(t, types.TokenNot, postcode.Condition[4].Kind)
	require.Len(t, postcode.Condition[4].Group, 1)

	first := address.Rules[0].WhenTrue
	require.Len(t, first, 2)
	assert.Equal(t, types.ActionDef{Type: types.ActionKeyShowIn, Target: "state", Group: "region_fields"}, first[0])
	assert.Equal(t, types.ActionDef{Type: types.ActionKeyMandatory, Targets: []string{"state"}}, first[1])

	assert.Equal(t, 18, sets[1].Rules[0].Condition[0].Value)
}

func TestParse_SingleSet(t *testing.T) {
	sets, err := Parse([]byte(`
name: single
rules:
  - condition: [{equals: {trigger: a, value: "1"}}]
    when_true: [{hide: b}]
`))
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "single", sets[0].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"not yaml", "{", types.ErrInvalidArgument},
		{"unknown field", "name: x\nrulez: []", types.ErrInvalidArgument},
		{"unknown token", "rules:\n  - condition: [xor]", types.ErrUnknownToken},
		{"unknown compare", "rules:\n  - condition: [{like: {trigger: a, value: b}}]", types.ErrUnknownToken},
		{"unknown action", "rules:\n  - condition: [{equals: {trigger: a, value: b}}]\n    when_true: [{explode: a}]", types.ErrUnknownAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	sets := loadAddress(t)

	data, err := Marshal(sets[0])
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, sets[0], again[0])
}

func TestCompile_Address(t *testing.T) {
	set := loadAddress(t)[0]

	tests := []struct {
		name       string
		country    string
		postcode   string
		wantHidden map[string]bool
		wantSubmit bool // enabled
	}{
		{
			name:       "australia with postcode",
			country:    "AU",
			postcode:   "2000",
			wantHidden: map[string]bool{"state": false, "province": true, "county": true},
			wantSubmit: true,
		},
		{
			name:       "canada without postcode",
			country:    "CA",
			postcode:   "",
			wantHidden: map[string]bool{"state": true, "province": false, "county": true},
			wantSubmit: false,
		},
		{
			name:       "new zealand needs a postcode",
			country:    "NZ",
			postcode:   "",
			wantHidden: map[string]bool{"state": true, "province": false, "county": false},
			wantSubmit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := addressRegistry(t, tt.country, tt.postcode)
			control, err := Compile(set, reg)
			require.NoError(t, err)
			require.Len(t, control.Rules(), 3)

			control.ApplyTheControls()

			for id, hidden := range tt.wantHidden {
				c, _ := reg.Get(id)
				assert.Equal(t, hidden, c.IsHidden(), "%s hidden", id)
			}
			submit, _ := reg.Get("submit")
			assert.Equal(t, tt.wantSubmit, !submit.IsDisabled(), "submit enabled")
		})
	}
}

func TestCompile_ConditionRendering(t *testing.T) {
	set := loadAddress(t)[0]
	control, err := Compile(set, addressRegistry(t, "AU", "2000"))
	require.NoError(t, err)

	assert.Equal(t, `Country="AU"`, control.Rules()[0].Condition.String())
	assert.Equal(t, `(Postcode matches "^\d{4}$" or (Country="NZ" and NOT (Postcode="")))`,
		control.Rules()[2].Condition.String())
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown trigger",
			doc:  "rules:\n  - condition: [{equals: {trigger: nope, value: 1}}]\n    when_true: [{hide: country}]",
			want: types.ErrUnknownComponent,
		},
		{
			name: "unknown target",
			doc:  "rules:\n  - condition: [{equals: {trigger: country, value: 1}}]\n    when_true: [{hide: nope}]",
			want: types.ErrUnknownComponent,
		},
		{
			name: "unknown group",
			doc:  "rules:\n  - condition: [{equals: {trigger: country, value: 1}}]\n    when_true: [{show_in: {target: state, group: nope}}]",
			want: types.ErrUnknownGroup,
		},
		{
			name: "group action without group",
			doc:  "rules:\n  - condition: [{equals: {trigger: country, value: 1}}]\n    when_true: [{show_in: {target: state}}]",
			want: types.ErrInvalidArgument,
		},
		{
			name: "chained leaves",
			doc:  "rules:\n  - condition: [{equals: {trigger: country, value: 1}}, {equals: {trigger: country, value: 2}}]\n    when_true: [{hide: state}]",
			want: types.ErrSyntax,
		},
		{
			name: "leading operator",
			doc:  "rules:\n  - condition: [and, {equals: {trigger: country, value: 1}}]\n    when_true: [{hide: state}]",
			want: types.ErrSyntax,
		},
		{
			name: "no actions",
			doc:  "rules:\n  - condition: [{equals: {trigger: country, value: 1}}]",
			want: types.ErrBuild,
		},
		{
			name: "match with number",
			doc:  "rules:\n  - condition: [{matches: {trigger: country, value: 1}}]\n    when_true: [{hide: state}]",
			want: types.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = Compile(sets[0], addressRegistry(t, "AU", ""))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompile_TooManyRules(t *testing.T) {
	set := &types.RuleSet{Rules: make([]types.RuleDefinition, types.MaxRulesPerSet+1)}
	_, err := Compile(set, components.NewRegistry())
	assert.ErrorIs(t, err, types.ErrTooManyRules)
}

func TestReferencesAndCheck(t *testing.T) {
	set := loadAddress(t)[0]

	assert.Equal(t,
		[]string{"country", "county", "postcode", "province", "state", "submit"},
		References(set))
	assert.NoError(t, Check(set))

	set.Rules[0].WhenTrue = nil
	assert.ErrorIs(t, Check(set), types.ErrBuild)
}

func TestFind(t *testing.T) {
	sets := loadAddress(t)

	s, err := Find(sets, "survey")
	require.NoError(t, err)
	assert.Equal(t, "survey", s.Name)

	s, err = Find(sets, "0190f5a4-7c2e-7b1a-9d3e-2f6a8b4c1d07")
	require.NoError(t, err)
	assert.Equal(t, "address", s.Name)

	_, err = Find(sets, "")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = Find(sets, "missing")
	assert.ErrorIs(t, err, types.ErrRuleSetNotFound)
}

func TestApply_WithBean(t *testing.T) {
	set := loadAddress(t)[0]
	states := []types.ComponentState{
		{ID: "country", Label: "Country", Bind: "address.country"},
		{ID: "postcode", Label: "Postcode", Bind: "address.postcode"},
		{ID: "state"},
		{ID: "province"},
		{ID: "county"},
		{ID: "submit", Disabled: true},
	}

	res, err := Apply(set, states, []byte(`{"address": {"country": "AU", "postcode": "2000"}}`))
	require.NoError(t, err)

	byID := make(map[string]types.ComponentState)
	for _, s := range res.Components {
		byID[s.ID] = s
	}
	assert.Equal(t, "AU", byID["country"].Value)
	assert.False(t, byID["state"].Hidden)
	assert.True(t, byID["state"].Mandatory)
	assert.True(t, byID["province"].Hidden)
	assert.False(t, byID["submit"].Disabled)
	assert.True(t, states[5].Disabled, "input states are not modified")

	require.Len(t, res.Outcomes, 3)
	assert.Equal(t, RuleOutcome{Rule: "australian states", Condition: `Country="AU"`, Result: true, ActionsApplied: 2}, res.Outcomes[0])
	assert.False(t, res.Outcomes[1].Result)
	assert.Equal(t, 0, res.Outcomes[1].ActionsApplied)
	assert.Equal(t, 3, res.ActionsApplied)
}

func TestApply_Errors(t *testing.T) {
	set := loadAddress(t)[0]

	_, err := Apply(set, []types.ComponentState{{ID: "country"}}, nil)
	assert.ErrorIs(t, err, types.ErrUnknownComponent)

	_, err = Apply(set, []types.ComponentState{{ID: "a"}, {ID: "a"}}, nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	states := []types.ComponentState{{ID: "country", Bind: "country"}}
	_, err = Apply(set, states, []byte(`{not json`))
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}
