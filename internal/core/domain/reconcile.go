package domain

// ReconcileAction describes what the reconciler did for one request.
type ReconcileAction string

const (
	ReconcileConsistent    ReconcileAction = "consistent"
	ReconcileRolledForward ReconcileAction = "rolled_forward"
	ReconcileUnrepairable  ReconcileAction = "unrepairable"
)

// ReconcileOutcome compares a request's status with its latest ledger record.
type ReconcileOutcome struct {
	RequestID      string          `json:"requestID"`
	Action         ReconcileAction `json:"action"`
	StatusBefore   RequestStatus   `json:"statusBefore"`
	StatusAfter    RequestStatus   `json:"statusAfter"`
	LatestSequence int64           `json:"latestSequence"`
	Detail         string          `json:"detail,omitempty"`
}

// ReconcileReport aggregates a full reconciliation pass.
type ReconcileReport struct {
	Checked       int                `json:"checked"`
	RolledForward int                `json:"rolledForward"`
	Unrepairable  []ReconcileOutcome `json:"unrepairable"`
}
