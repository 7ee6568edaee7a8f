package entity

// Task type constants. Requests are top-level tasks submitted against a
// process template; they may spawn child tasks.
const (
	TypeTask    = "task"
	TypeRequest = "request"
)

// Priority constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Validation level status constants. A level is created pending and decided
// exactly once; it is never re-opened.
const (
	LevelStatusPending   = "pending"
	LevelStatusValidated = "validated"
	LevelStatusRefused   = "refused"
)

// Recurrence run status constants
const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// Recurrence unit constants
const (
	RecurrenceUnitDay   = "day"
	RecurrenceUnitWeek  = "week"
	RecurrenceUnitMonth = "month"
	RecurrenceUnitYear  = "year"
)

// Order line status constants for material requests. The labels are the
// procurement workflow's display values and double as stored state.
const (
	OrderLinePendingValidation = "En attente validation"
	OrderLineQuoteRequested    = "Demande de devis"
	OrderLineRefused           = "Refusée"
)

// FulfillmentChecklist is the fixed checklist seeded on the downstream
// procurement task created when a material request is validated.
var FulfillmentChecklist = []string{
	"Demande de devis",
	"Bon de commande envoyé",
	"AR reçu",
	"Commande livrée",
	"Commande distribuée",
}

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Audit entity type constants
const (
	AuditEntityTask            = "task"
	AuditEntityRequest         = "request"
	AuditEntityValidationLevel = "validation_level"
	AuditEntityProcessTemplate = "process_template"
)

// Audit action constants
const (
	AuditActionStatusChanged       = "STATUS_CHANGED"
	AuditActionTasksGenerated      = "TASKS_GENERATED"
	AuditActionValidationRequested = "VALIDATION_REQUESTED"
	AuditActionLevelValidated      = "LEVEL_VALIDATED"
	AuditActionLevelRefused        = "LEVEL_REFUSED"
	AuditActionMaterialValidated   = "MATERIAL_VALIDATED"
	AuditActionMaterialRefused     = "MATERIAL_REFUSED"
	AuditActionRecurrenceCreated   = "RECURRENCE_CREATED"
)
