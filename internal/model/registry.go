package model

// All lists every table owned by the service in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProgress{},
		&DecisionRecord{},
		&Scenario{},
		&ChatThread{},
		&ChatMessage{},
		&JournalEntry{},
		&NotificationType{},
		&Notification{},
	}
}
