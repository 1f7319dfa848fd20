package models

// QueryRequest is the body of POST /query. SessionID is optional;
// requests without one share a single default conversation.
type QueryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the success body of POST /query.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// ConversationTurn is one completed question/answer exchange.
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
