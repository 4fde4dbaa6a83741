// Package mocks provides centralized mock implementations for testing.
//
// Each mock is a struct of function fields, one per interface method. A nil
// field falls back to the mock's default values, so tests only set the
// behavior they care about:
//
//	tasks := &mocks.MockTaskService{
//	    CompleteTaskFn: func(ctx context.Context, userID, taskID uuid.UUID, p service.CompleteTaskParams) (*domain.Task, error) {
//	        return nil, domain.ErrAlreadyCompleted
//	    },
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Add a compile-time assertion that the mock satisfies the interface
package mocks
