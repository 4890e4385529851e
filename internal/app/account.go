package app

// AccountView is the payload for the account screen. There is no sign-in;
// the screen shows how this dashboard instance is wired.
type AccountView struct {
	Strategy   string // StrategyLocal or StrategyRemote
	DataSource string // "sample" or "postgres"
	ReportURL  string // Set for the remote strategy
}
