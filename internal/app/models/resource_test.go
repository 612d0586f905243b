package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

func rawPatch(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var patch map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &patch))
	return patch
}

func TestParseResourceType(t *testing.T) {
	for _, typ := range ResourceTypes() {
		got, err := ParseResourceType(string(typ))
		require.NoError(t, err)
		require.Equal(t, typ, got)
	}

	_, err := ParseResourceType("blogs")
	require.True(t, errors.Is(err, apperrors.ErrInvalidType))
	require.Len(t, ResourceTypes(), 7)
}

func TestSchemaInitEvent(t *testing.T) {
	schema, ok := SchemaFor(ResourceEvents)
	require.True(t, ok)

	r := schema.NewResource()
	require.NoError(t, r.ApplyPatch(rawPatch(t, `{"title":"Hack Night","capacity":2,"registeredUsers":["x"],"venue":"Lab 3"}`)))
	schema.Init(r)

	require.Equal(t, "Hack Night", r.Title)
	require.Equal(t, 2, r.Event.Capacity)
	require.Empty(t, r.Event.RegisteredUsers)
	require.NotNil(t, r.BookmarkedBy)
	require.Equal(t, "Lab 3", r.Attributes["venue"])
	require.NoError(t, schema.Validate(r))
}

func TestSchemaInitCertification(t *testing.T) {
	schema, _ := SchemaFor(ResourceCertifications)
	r := schema.NewResource()
	r.Title = "AWS"
	schema.Init(r)

	require.NotNil(t, r.Certification)
	require.Equal(t, []string{}, r.Certification.IssuedTo)
}

func TestApplyPatchLeavesAbsentFields(t *testing.T) {
	schema, _ := SchemaFor(ResourceEvents)
	r := schema.NewResource()
	require.NoError(t, r.ApplyPatch(rawPatch(t, `{"title":"Talk","description":"intro","location":"Hall A","capacity":10}`)))
	schema.Init(r)
	r.Event.RegisteredUsers = []string{"u1"}

	require.NoError(t, r.ApplyPatch(rawPatch(t, `{"id":"other","title":"Talk v2","registeredUsers":[]}`)))

	require.Equal(t, "Talk v2", r.Title)
	require.Equal(t, "intro", r.Description)
	require.Equal(t, "Hall A", r.Event.Location)
	require.Equal(t, []string{"u1"}, r.Event.RegisteredUsers)
	require.Empty(t, r.ID)
}

func TestApplyPatchTypeMismatch(t *testing.T) {
	r := &Resource{Type: ResourcePYQs}
	err := r.ApplyPatch(rawPatch(t, `{"title":42}`))
	require.Error(t, err)
}

func TestValidateEvent(t *testing.T) {
	schema, _ := SchemaFor(ResourceEvents)
	r := schema.NewResource()
	r.Title = "Workshop"
	r.Event.Capacity = -1
	r.Event.RegistrationFields = []RegistrationField{
		{Label: "Email", Kind: FieldEmail},
		{Label: "Email", Kind: FieldText},
		{Label: "Track", Kind: FieldSelect},
	}

	err := schema.Validate(r)
	require.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	ce, ok := apperrors.AsCustom(err)
	require.True(t, ok)
	require.Contains(t, ce.Details, "capacity")
	require.Contains(t, ce.Details, "registrationFields[1]")
	require.Contains(t, ce.Details, "registrationFields[2]")
}

func TestValidateRequiresTitle(t *testing.T) {
	schema, _ := SchemaFor(ResourceHackathons)
	err := schema.Validate(schema.NewResource())
	require.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestVisibleTo(t *testing.T) {
	owner := "owner"
	quiz := &Resource{Type: ResourceQuizzes, CreatedBy: &owner, AssignedTo: []string{"assigned"}}

	require.False(t, quiz.VisibleTo(nil))
	require.True(t, quiz.VisibleTo(&Caller{ID: "owner", Role: RoleStudent}))
	require.True(t, quiz.VisibleTo(&Caller{ID: "assigned", Role: RoleStudent}))
	require.False(t, quiz.VisibleTo(&Caller{ID: "stranger", Role: RoleStudent}))
	require.True(t, quiz.VisibleTo(&Caller{ID: "stranger", Role: RoleAdmin}))

	quiz.IsActive = true
	require.True(t, quiz.VisibleTo(&Caller{ID: "stranger", Role: RoleStudent}))
}

func TestAssignAndBookmarkAreSets(t *testing.T) {
	r := &Resource{}
	require.True(t, r.Assign("a"))
	require.False(t, r.Assign("a"))
	require.Equal(t, []string{"a"}, r.AssignedTo)

	require.True(t, r.ToggleBookmark("b"))
	require.False(t, r.ToggleBookmark("b"))
	require.Empty(t, r.BookmarkedBy)
}

func TestMarshalJSONFlattens(t *testing.T) {
	r := &Resource{
		ID:         "r1",
		Type:       ResourceEvents,
		Title:      "Expo",
		Attributes: map[string]interface{}{"banner": "expo.png"},
		Event:      &EventDetails{Capacity: 5, RegisteredUsers: []string{"u1"}},
	}

	b, err := json.Marshal(r)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, "r1", out["id"])
	require.Equal(t, "expo.png", out["banner"])
	require.Equal(t, float64(5), out["capacity"])
	require.Equal(t, []interface{}{"u1"}, out["registeredUsers"])
	require.NotContains(t, out, "issuedTo")
}

func TestCloneIsDeep(t *testing.T) {
	r := &Resource{AssignedTo: []string{"a"}, Event: &EventDetails{RegisteredUsers: []string{"u"}}}
	c := r.Clone()
	c.AssignedTo[0] = "z"
	c.Event.RegisteredUsers = append(c.Event.RegisteredUsers, "v")

	require.Equal(t, "a", r.AssignedTo[0])
	require.Equal(t, []string{"u"}, r.Event.RegisteredUsers)
}

func TestValidateRegistrationData(t *testing.T) {
	fields := []RegistrationField{
		{Label: "Name", Kind: FieldText, Required: true},
		{Label: "Email", Kind: FieldEmail, Required: true},
		{Label: "Year", Kind: FieldNumber},
		{Label: "Track", Kind: FieldSelect, Options: []string{"AI", "Web"}},
	}

	require.Nil(t, ValidateRegistrationData(fields, map[string]string{"Name": "Ada", "Email": "ada@uni.edu", "Year": "3", "Track": "AI"}))

	problems := ValidateRegistrationData(fields, map[string]string{"Email": "not-an-email", "Year": "third", "Track": "Games"})
	require.Len(t, problems, 4)
	require.Contains(t, problems, "Name")
	require.Contains(t, problems, "Email")
}
