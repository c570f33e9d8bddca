// Copyright (c) 2026 RuneBingo. All rights reserved.

package bingo

// # Field Identifiers

// Field names an updatable Bingo attribute. Values match the JSON payload keys.
type Field string

const (
	FieldTitle               Field = "title"
	FieldDescription         Field = "description"
	FieldLanguage            Field = "language"
	FieldPrivate             Field = "private"
	FieldWidth               Field = "width"
	FieldHeight              Field = "height"
	FieldFullLineValue       Field = "full_line_value"
	FieldStartDate           Field = "start_date"
	FieldEndDate             Field = "end_date"
	FieldMaxRegistrationDate Field = "max_registration_date"
)

// # Update Restriction Matrix

// fieldRule governs both axes of a field edit.
//
// Role axis: every field needs at least Organizer; ownerOnly fields need Owner.
// Status axis: the bingo status must be listed in statuses.
// moderatorBypass lets moderators skip the Organizer minimum and the status
// axis, but never the ownerOnly requirement.
type fieldRule struct {
	statuses        []Status
	ownerOnly       bool
	moderatorBypass bool
}

var (
	pendingOnly       = []Status{StatusPending}
	pendingOrOngoing  = []Status{StatusPending, StatusOngoing}
	defaultFieldRules = map[Field]fieldRule{
		FieldTitle:               {statuses: pendingOrOngoing, moderatorBypass: true},
		FieldDescription:         {statuses: pendingOrOngoing, moderatorBypass: true},
		FieldEndDate:             {statuses: pendingOrOngoing, moderatorBypass: true},
		FieldLanguage:            {statuses: pendingOnly, moderatorBypass: true},
		FieldPrivate:             {statuses: pendingOnly, moderatorBypass: true},
		FieldStartDate:           {statuses: pendingOnly, moderatorBypass: true},
		FieldMaxRegistrationDate: {statuses: pendingOnly, moderatorBypass: true},
		FieldWidth:               {statuses: pendingOnly, moderatorBypass: true},
		FieldHeight:              {statuses: pendingOnly, moderatorBypass: true},
		FieldFullLineValue:       {statuses: pendingOnly, moderatorBypass: true},
	}
)

// rule returns the restriction for field. Unknown fields are owner-only and
// editable in no status, so a field added without a rule stays locked.
func (field Field) rule() fieldRule {
	if rule, ok := defaultFieldRules[field]; ok {
		return rule
	}
	return fieldRule{ownerOnly: true}
}

func (rule fieldRule) allows(status Status) bool {
	for _, allowed := range rule.statuses {
		if allowed == status {
			return true
		}
	}
	return false
}
