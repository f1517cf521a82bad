// Package store keeps the task collection in memory and mirrors it to a
// JSON file after every mutation.
//
// The file is a single JSON object keyed by task id:
//
//	{
//	    "0b7e1c2a-4d0f-4c41-9a57-0e6f6f2b1f0d": {
//	        "createdAt": "2024-01-01T00:00:00Z",
//	        "description": "buy milk",
//	        "id": "0b7e1c2a-4d0f-4c41-9a57-0e6f6f2b1f0d",
//	        "status": "not-done",
//	        "updatedAt": "2024-01-01T00:00:00Z"
//	    }
//	}
//
// An empty store is written as {}.
//
// # Loading
//
// Open creates the parent directory and an empty file when they are
// missing. A file that is not valid JSON is treated as empty and left on
// disk untouched until the next mutation overwrites it. A file that parses
// but holds an undecodable task fails the load.
//
// # Saving
//
// Every mutation rewrites the whole file. The write goes to a temporary
// file in the same directory which is then renamed over the target, so a
// crash mid-write leaves the previous contents intact.
package store
