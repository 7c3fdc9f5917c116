package domain

// DashboardStats is derived from the visible ticket list on every read;
// nothing here is stored. ByStatus always carries every enumerated
// status, zero-valued when no ticket matches.
type DashboardStats struct {
	TotalTickets          int
	ClosedTickets         int
	PendingTickets        int
	ByStatus              map[TicketStatus]int
	ByEngineer            map[string]int
	AvgAttentionTimeHours float64
}
