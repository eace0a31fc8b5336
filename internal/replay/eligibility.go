package replay

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/noteport/internal/freshservice"
)

const (
	publicNoteActivityMarkerConstant  = "added a public note"
	privateNoteActivityMarkerConstant = "added a private note"
)

// ConversationLister reads the existing conversations and activity feed of a destination ticket.
type ConversationLister interface {
	ListConversations(executionContext context.Context, ticketIdentifier int64) ([]freshservice.Conversation, error)
	ListActivities(executionContext context.Context, ticketIdentifier int64) ([]freshservice.Activity, error)
}

// EligibilityChecker decides whether a destination ticket should receive replayed notes.
type EligibilityChecker struct {
	lister    ConversationLister
	evaluator EligibilityEvaluator
}

// NewEligibilityChecker builds a checker backed by the destination API.
func NewEligibilityChecker(lister ConversationLister) *EligibilityChecker {
	return &EligibilityChecker{lister: lister}
}

// Check fetches what the decision needs and evaluates it.
func (checker *EligibilityChecker) Check(executionContext context.Context, request EligibilityRequest) (EligibilityDecision, error) {
	conversations, conversationsError := checker.lister.ListConversations(executionContext, request.DestinationID)
	if conversationsError != nil {
		return "", fmt.Errorf(conversationListFailureTemplateConstant, conversationsError)
	}

	if checker.evaluator.MigratedBySecondaryActor(conversations, request) {
		return DecisionSkippedAlreadyMigrated, nil
	}

	var activities []freshservice.Activity
	if len(conversations) > 0 {
		listedActivities, activitiesError := checker.lister.ListActivities(executionContext, request.DestinationID)
		if activitiesError != nil {
			return "", fmt.Errorf(activityListFailureTemplateConstant, activitiesError)
		}
		activities = listedActivities
	}

	return checker.evaluator.evaluateConversations(EligibilityInputs{
		Conversations: conversations,
		Activities:    activities,
		Request:       request,
	}), nil
}

// EligibilityInputs captures everything the decision depends on.
type EligibilityInputs struct {
	Conversations []freshservice.Conversation
	Activities    []freshservice.Activity
	Request       EligibilityRequest
}

// EligibilityEvaluator applies the eligibility rules to fetched ticket state.
type EligibilityEvaluator struct{}

// MigratedBySecondaryActor reports whether the secondary actor already authored a conversation.
func (EligibilityEvaluator) MigratedBySecondaryActor(conversations []freshservice.Conversation, request EligibilityRequest) bool {
	if !request.SecondaryActorConfigured() {
		return false
	}
	for _, conversation := range conversations {
		if conversation.UserID == request.SecondaryActor {
			return true
		}
	}
	return false
}

// Evaluate produces the decision for one ticket.
//
// A ticket is eligible when it has no conversations, or when every conversation
// authored by the primary actor has a matching "added a public/private note"
// activity of that actor with the same timestamp.
func (evaluator EligibilityEvaluator) Evaluate(inputs EligibilityInputs) EligibilityDecision {
	if evaluator.MigratedBySecondaryActor(inputs.Conversations, inputs.Request) {
		return DecisionSkippedAlreadyMigrated
	}
	return evaluator.evaluateConversations(inputs)
}

// evaluateConversations applies the activity match and dry run rules once the
// secondary actor check has passed.
func (evaluator EligibilityEvaluator) evaluateConversations(inputs EligibilityInputs) EligibilityDecision {
	decision := DecisionEligible
	if len(inputs.Conversations) > 0 {
		noteTimestamps := primaryActorNoteTimestamps(inputs.Activities, inputs.Request.PrimaryActor)
		for _, conversation := range inputs.Conversations {
			if conversation.UserID != inputs.Request.PrimaryActor {
				continue
			}
			if _, matched := noteTimestamps[conversation.CreatedAt]; !matched {
				decision = DecisionSkippedConditionsNotMet
				break
			}
		}
	}

	if decision == DecisionEligible && inputs.Request.DryRun {
		return DecisionSkippedDryRun
	}
	return decision
}

func primaryActorNoteTimestamps(activities []freshservice.Activity, primaryActor int64) map[string]struct{} {
	timestamps := make(map[string]struct{}, len(activities))
	for _, activity := range activities {
		if activity.Actor.ID != primaryActor {
			continue
		}
		if !strings.Contains(activity.Content, publicNoteActivityMarkerConstant) && !strings.Contains(activity.Content, privateNoteActivityMarkerConstant) {
			continue
		}
		timestamps[activity.CreatedAt] = struct{}{}
	}
	return timestamps
}
