package vault

// Principal is the authenticated caller of an operation. It is passed explicitly
// to every orchestration call instead of living in ambient session state.
type Principal struct {
	UserID         string
	OrganizationID string
	SessionID      string
	IPAddress      string
}
