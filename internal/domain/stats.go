package domain

// TaskStats are system-wide task counts. Pending is always Total - Completed.
type TaskStats struct {
	Total     int `json:"total_tasks"`
	Completed int `json:"completed_tasks"`
	Pending   int `json:"pending_tasks"`
	Immediate int `json:"immediate_tasks"`
	Custom    int `json:"custom_tasks"`
	OneTime   int `json:"one_time_tasks"`
	Repeated  int `json:"repeated_tasks"`
}

// UserTaskStats are point-in-time counts for one assignee.
type UserTaskStats struct {
	Total           int `json:"total_tasks"`
	Completed       int `json:"completed_tasks"`
	Pending         int `json:"pending_tasks"`
	Overdue         int `json:"overdue_tasks"`
	CompletedOnTime int `json:"completed_on_time"`
}

// UserWithStats pairs a standard account with its task counts.
type UserWithStats struct {
	User
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
}
