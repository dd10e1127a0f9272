package webhook

import "github.com/stretchr/testify/mock"

// MatchEndpoint creates a custom matcher for endpoint arguments in mocks
func MatchEndpoint(matcher func(Endpoint) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchDelivery creates a custom matcher for delivery arguments in mocks
func MatchDelivery(matcher func(Delivery) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchJob creates a custom matcher for queue job arguments in mocks
func MatchJob(matcher func(Job) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchOutcome creates a custom matcher for attempt outcome arguments in mocks
func MatchOutcome(matcher func(Outcome) bool) interface{} {
	return mock.MatchedBy(matcher)
}
