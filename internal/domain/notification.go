package domain

// NotificationTarget routes events discovered for an account to a
// chat destination. Many chats may follow one account and vice versa.
type NotificationTarget struct {
	Account string
	ChatID  int64
	Event   string
}
