package models

type CustomerLoanCount struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Count        int    `json:"count"`
}

type BookLoanCount struct {
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title"`
	Count     int    `json:"count"`
}

type Stats struct {
	TotalIssues    int                 `json:"total_issues"`
	ActiveIssues   int                 `json:"active_issues"`
	OverdueIssues  int                 `json:"overdue_issues"`
	TotalCustomers int                 `json:"total_customers"`
	TotalBooks     int                 `json:"total_books"`
	AvailableBooks int                 `json:"available_books"`
	TopCustomers   []CustomerLoanCount `json:"top_customers"`
	TopBooks       []BookLoanCount     `json:"top_books"`
}

// OverdueEntry is one line of the overdue report.
type OverdueEntry struct {
	IssueID      int64  `json:"issue_id"`
	BookTitle    string `json:"book_title"`
	CustomerName string `json:"customer_name"`
	DateIssued   string `json:"date_issued"`
	DaysBorrowed int    `json:"days_borrowed"`
	DaysOverdue  int    `json:"days_overdue"`
}

type FullReport struct {
	Statistics    Stats   `json:"statistics"`
	ActiveIssues  []Issue `json:"active_issues"`
	OverdueIssues []Issue `json:"overdue_issues"`
}
