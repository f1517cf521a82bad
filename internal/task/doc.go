// Package task defines the task entity and its status enumeration.
//
// A task is stored in the durable file as a flat record:
//
//	{
//	  "description": "buy milk",
//	  "id": "0b7e1c2a-4d0f-4c41-9a57-0e6f6f2b1f0d",
//	  "status": "not-done",
//	  "createdAt": "2024-01-01T00:00:00Z",
//	  "updatedAt": "2024-01-01T00:00:00Z"
//	}
//
// # Task Status Values
//
//   - "not-done": Task has not been started
//   - "in-progress": Task is being worked on
//   - "done": Task is complete
//
// Any status may move to any other status.
//
// # Timestamps
//
// Timestamps are written as RFC 3339 in UTC with nanosecond precision.
// Decoding also accepts zone-less ISO-8601 forms such as
// "2024-01-01T00:00:00" and "2024-01-01 00:00:00.123456", which are
// interpreted in local time.
package task
