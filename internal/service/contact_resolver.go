package service

import (
	"strings"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

// ResolveContacts builds the resolved contact set for a visit: the union of
// selected existing contacts and ad-hoc contacts authored during the visit.
// An empty union is a blocking error. Selected ids must belong to the
// entity's contact list; ad-hoc contacts stay visit-scoped.
func ResolveContacts(existing []models.Contact, selectedIDs []string, added []models.NewContact) ([]models.VisitContact, error) {
	byID := make(map[string]models.Contact, len(existing))
	for _, c := range existing {
		byID[c.ID] = c
	}

	resolved := make([]models.VisitContact, 0, len(selectedIDs)+len(added))
	seen := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		contact, ok := byID[id]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "selected contact does not belong to this entity")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		resolved = append(resolved, models.VisitContact{
			ContactID: contact.ID,
			Name:      contact.Name,
			Role:      contact.Role,
			Phone:     contact.Phone,
			Email:     contact.Email,
		})
	}

	for _, c := range added {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Role) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "new contacts require name and role")
		}
		resolved = append(resolved, models.VisitContact{
			Name:  strings.TrimSpace(c.Name),
			Role:  strings.TrimSpace(c.Role),
			Phone: c.Phone,
			Email: c.Email,
		})
	}

	if len(resolved) == 0 {
		return nil, appErrors.ErrIncompleteContact
	}
	return resolved, nil
}
