package models

// RequestStatus константы статусов заказа на коммиссию
const (
	RequestStatusPending    = "pending"
	RequestStatusAccepted   = "accepted"
	RequestStatusInProgress = "in_progress"
	RequestStatusReview     = "review"
	RequestStatusCompleted  = "completed"
	RequestStatusRejected   = "rejected"
	RequestStatusCancelled  = "cancelled"
)

// RequestPriority константы приоритетов заказа
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// RequestType категории художественных работ
const (
	RequestTypePortrait        = "portrait"
	RequestTypeLandscape       = "landscape"
	RequestTypeCharacterDesign = "character_design"
	RequestTypeIllustration    = "illustration"
	RequestTypeConceptArt      = "concept_art"
	RequestTypeSculpture       = "sculpture"
	RequestTypeCalligraphy     = "calligraphy"
	RequestTypeDigitalArt      = "digital_art"
	RequestTypeTraditionalArt  = "traditional_art"
	RequestTypeOther           = "other"
)

// MilestoneStatus константы статусов этапов работы
const (
	MilestoneStatusPending    = "pending"
	MilestoneStatusInProgress = "in_progress"
	MilestoneStatusCompleted  = "completed"
)

// RevisionStatus константы статусов запросов на правки
const (
	RevisionStatusPending    = "pending"
	RevisionStatusInProgress = "in_progress"
	RevisionStatusCompleted  = "completed"
)

// DeliverableKind типы результатов работы
const (
	DeliverableKindFinal         = "final"
	DeliverableKindPreview       = "preview"
	DeliverableKindSource        = "source"
	DeliverableKindDocumentation = "documentation"
)

// UserRole роли пользователей платформы
const (
	RoleBuyer  = "buyer"
	RoleArtist = "artist"
	RoleAdmin  = "admin"
)

// ValidRequestStatuses список валидных статусов заказа
var ValidRequestStatuses = map[string]struct{}{
	RequestStatusPending:    {},
	RequestStatusAccepted:   {},
	RequestStatusInProgress: {},
	RequestStatusReview:     {},
	RequestStatusCompleted:  {},
	RequestStatusRejected:   {},
	RequestStatusCancelled:  {},
}

// TerminalRequestStatuses статусы, из которых нет переходов
var TerminalRequestStatuses = map[string]struct{}{
	RequestStatusCompleted: {},
	RequestStatusRejected:  {},
	RequestStatusCancelled: {},
}

// ValidPriorities список валидных приоритетов
var ValidPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
	PriorityUrgent: {},
}

// ValidRequestTypes список валидных категорий работ
var ValidRequestTypes = map[string]struct{}{
	RequestTypePortrait:        {},
	RequestTypeLandscape:       {},
	RequestTypeCharacterDesign: {},
	RequestTypeIllustration:    {},
	RequestTypeConceptArt:      {},
	RequestTypeSculpture:       {},
	RequestTypeCalligraphy:     {},
	RequestTypeDigitalArt:      {},
	RequestTypeTraditionalArt:  {},
	RequestTypeOther:           {},
}

// ValidMilestoneStatuses список валидных статусов этапов
var ValidMilestoneStatuses = map[string]struct{}{
	MilestoneStatusPending:    {},
	MilestoneStatusInProgress: {},
	MilestoneStatusCompleted:  {},
}

// ValidRevisionStatuses список валидных статусов правок
var ValidRevisionStatuses = map[string]struct{}{
	RevisionStatusPending:    {},
	RevisionStatusInProgress: {},
	RevisionStatusCompleted:  {},
}

// ValidDeliverableKinds список валидных типов результатов
var ValidDeliverableKinds = map[string]struct{}{
	DeliverableKindFinal:         {},
	DeliverableKindPreview:       {},
	DeliverableKindSource:        {},
	DeliverableKindDocumentation: {},
}

// ValidRoles список валидных ролей пользователей
var ValidRoles = map[string]struct{}{
	RoleBuyer:  {},
	RoleArtist: {},
	RoleAdmin:  {},
}

// IsTerminalStatus возвращает true, если статус является терминальным.
func IsTerminalStatus(status string) bool {
	_, ok := TerminalRequestStatuses[status]
	return ok
}
