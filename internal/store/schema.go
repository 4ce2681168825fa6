package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	puzzlesTable    = "puzzles"
	attemptsTable   = "attempt_events"
	llmEventsTable  = "llm_request_events"
	sequenceColumn  = "sequence"
	timestampColumn = "timestamp"
)

var (
	// PuzzlesColumns holds the columns for the "puzzles" table.
	PuzzlesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "display_title", Type: field.TypeString, Default: ""},
		{Name: "statement", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "category", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString, Default: "medium"},
		{Name: "tags", Type: field.TypeString, Size: 2147483647, Default: "[]"},
		{Name: "steps", Type: field.TypeString, Size: 2147483647},
		{Name: "solution_order", Type: field.TypeString, Size: 2147483647},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
	}
	// PuzzlesTable holds the schema information for the "puzzles" table.
	PuzzlesTable = &schema.Table{
		Name:       puzzlesTable,
		Columns:    PuzzlesColumns,
		PrimaryKey: []*schema.Column{PuzzlesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "puzzle_category", Columns: []*schema.Column{PuzzlesColumns[4]}},
			{Name: "puzzle_difficulty", Columns: []*schema.Column{PuzzlesColumns[5]}},
			{Name: "puzzle_is_active", Columns: []*schema.Column{PuzzlesColumns[9]}},
		},
	}

	// AttemptEventsColumns holds the columns for the "attempt_events" table.
	AttemptEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: sequenceColumn, Type: field.TypeInt64, Unique: true},
		{Name: timestampColumn, Type: field.TypeInt64},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "puzzle_id", Type: field.TypeString},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "user_order", Type: field.TypeString, Size: 2147483647},
		{Name: "score", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeBool},
		{Name: "hint_count", Type: field.TypeInt, Default: 0},
	}
	// AttemptEventsTable holds the schema information for the "attempt_events" table.
	AttemptEventsTable = &schema.Table{
		Name:       attemptsTable,
		Columns:    AttemptEventsColumns,
		PrimaryKey: []*schema.Column{AttemptEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attemptevent_timestamp", Columns: []*schema.Column{AttemptEventsColumns[2]}},
			{Name: "attemptevent_session_id", Columns: []*schema.Column{AttemptEventsColumns[3]}},
			{Name: "attemptevent_puzzle_id", Columns: []*schema.Column{AttemptEventsColumns[4]}},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: sequenceColumn, Type: field.TypeInt64, Unique: true},
		{Name: timestampColumn, Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LlmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LlmRequestEventsColumns[9]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		PuzzlesTable,
		AttemptEventsTable,
		LlmRequestEventsTable,
	}
)
