package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

func entityContacts() []models.Contact {
	return []models.Contact{
		{ID: "c1", EntityID: "e1", Name: "Sister Mary", Role: "Principal", Phone: "9000000001"},
		{ID: "c2", EntityID: "e1", Name: "R. Gupta", Role: "Coordinator"},
	}
}

func TestResolveContactsUnionOfSelectedAndNew(t *testing.T) {
	resolved, err := ResolveContacts(entityContacts(), []string{"c1"}, []models.NewContact{
		{Name: "S. Iyer", Role: "Maths HOD", Phone: "9000000002"},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "c1", resolved[0].ContactID)
	assert.Equal(t, "Sister Mary", resolved[0].Name)
	assert.Empty(t, resolved[1].ContactID)
	assert.Equal(t, "S. Iyer", resolved[1].Name)
}

func TestResolveContactsEmptyUnionBlocks(t *testing.T) {
	_, err := ResolveContacts(entityContacts(), nil, nil)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrIncompleteContact))
}

func TestResolveContactsForeignSelectionRejected(t *testing.T) {
	_, err := ResolveContacts(entityContacts(), []string{"c9"}, nil)
	require.Error(t, err)
}

func TestResolveContactsDeduplicatesSelection(t *testing.T) {
	resolved, err := ResolveContacts(entityContacts(), []string{"c2", "c2"}, nil)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestResolveContactsNewContactNeedsNameAndRole(t *testing.T) {
	_, err := ResolveContacts(entityContacts(), nil, []models.NewContact{{Name: "  ", Role: "Principal"}})
	require.Error(t, err)

	_, err = ResolveContacts(entityContacts(), nil, []models.NewContact{{Name: "A. Khan", Role: ""}})
	require.Error(t, err)
}
