package enums

type AuditAction string

const (
	AuditActionSubmissionApprove AuditAction = "SUBMISSION_APPROVE"
	AuditActionSubmissionReject  AuditAction = "SUBMISSION_REJECT"
	AuditActionSuspensionIssued  AuditAction = "SUSPENSION_ISSUED"
	AuditActionSuggestionApprove AuditAction = "SUGGESTION_APPROVE"
	AuditActionSuggestionReject  AuditAction = "SUGGESTION_REJECT"
	AuditActionQueuePaused       AuditAction = "QUEUE_PAUSED"
	AuditActionQueueResumed      AuditAction = "QUEUE_RESUMED"
)
