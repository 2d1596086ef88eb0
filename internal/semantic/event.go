package semantic

import "github.com/google/uuid"

// Layer identifies which classifier stage produced an event.
type Layer string

const (
	LayerStructural Layer = "1"
	LayerSyntactic  Layer = "2"
	LayerSemantic   Layer = "3"
	LayerBehavioral Layer = "4"
	LayerHeuristic  Layer = "5a"
	LayerAdvisory   Layer = "5b"
)

// EventType is the closed taxonomy of semantic change kinds.
type EventType string

// Layer 1: structural.
const (
	EventFileAdded         EventType = "file_added"
	EventFileRemoved       EventType = "file_removed"
	EventDependencyAdded   EventType = "dependency_added"
	EventDependencyRemoved EventType = "dependency_removed"
	EventNodeAdded         EventType = "node_added"
	EventNodeRemoved       EventType = "node_removed"
)

// Layer 2: syntactic.
const (
	EventSignatureChanged         EventType = "signature_changed"
	EventDecoratorAdded           EventType = "decorator_added"
	EventDecoratorRemoved         EventType = "decorator_removed"
	EventFunctionMadeAsync        EventType = "function_made_async"
	EventFunctionMadeSync         EventType = "function_made_sync"
	EventInheritanceChanged       EventType = "inheritance_changed"
	EventDefaultParametersAdded   EventType = "default_parameters_added"
	EventDefaultParametersRemoved EventType = "default_parameters_removed"
)

// Layer 3: semantic.
const (
	EventControlFlowChanged        EventType = "control_flow_changed"
	EventFunctionMadeGenerator     EventType = "function_made_generator"
	EventGeneratorMadeFunction     EventType = "generator_made_function"
	EventYieldPatternChanged       EventType = "yield_pattern_changed"
	EventReturnPatternChanged      EventType = "return_pattern_changed"
	EventExceptionHandlingAdded    EventType = "exception_handling_added"
	EventErrorHandlingIntroduced   EventType = "error_handling_introduced"
	EventExceptionHandlingRemoved  EventType = "exception_handling_removed"
	EventErrorHandlingRemoved      EventType = "error_handling_removed"
	EventExceptionHandlingChanged  EventType = "exception_handling_changed"
	EventInternalCallAdded         EventType = "internal_call_added"
	EventInternalCallRemoved       EventType = "internal_call_removed"
	EventComprehensionUsageChanged EventType = "comprehension_usage_changed"
	EventLambdaUsageChanged        EventType = "lambda_usage_changed"
	EventGlobalScopeChanged        EventType = "global_scope_changed"
	EventNonlocalScopeChanged      EventType = "nonlocal_scope_changed"
)

// Layer 4: behavioral.
const (
	EventFunctionComplexityChanged    EventType = "function_complexity_changed"
	EventFunctionalProgrammingAdopted EventType = "functional_programming_adopted"
	EventFunctionalProgrammingRemoved EventType = "functional_programming_removed"
	EventFunctionalProgrammingChanged EventType = "functional_programming_changed"
	EventAttributeAccessChanged       EventType = "attribute_access_changed"
	EventSubscriptAccessChanged       EventType = "subscript_access_changed"
	EventAssignmentPatternChanged     EventType = "assignment_pattern_changed"
	EventAugmentedAssignmentChanged   EventType = "augmented_assignment_changed"
	EventBinaryOperatorUsageChanged   EventType = "binary_operator_usage_changed"
	EventUnaryOperatorUsageChanged    EventType = "unary_operator_usage_changed"
	EventComparisonOperatorChanged    EventType = "comparison_operator_usage_changed"
	EventLogicalOperatorUsageChanged  EventType = "logical_operator_usage_changed"
	EventStringLiteralUsageChanged    EventType = "string_literal_usage_changed"
	EventNumericLiteralUsageChanged   EventType = "numeric_literal_usage_changed"
	EventBooleanLiteralUsageChanged   EventType = "boolean_literal_usage_changed"
	EventNullLiteralUsageChanged      EventType = "null_literal_usage_changed"
	EventAssertionUsageChanged        EventType = "assertion_usage_changed"
	EventClassMethodsChanged          EventType = "class_methods_changed"
	EventClassAttributesChanged       EventType = "class_attributes_changed"
)

// Layer 5a: heuristic patterns.
const (
	EventRefactoringExtractMethod    EventType = "refactoring_extract_method"
	EventRefactoringInlineMethod     EventType = "refactoring_inline_method"
	EventLoopConvertedToBuiltin      EventType = "loop_converted_to_builtin"
	EventSecurityImprovement         EventType = "security_improvement"
	EventSecurityRiskIntroduced      EventType = "security_risk_introduced"
	EventHardcodedCredentialRemoved  EventType = "hardcoded_credential_removed"
	EventHardcodedCredentialAdded    EventType = "hardcoded_credential_added"
	EventPerformanceImprovement      EventType = "performance_improvement"
	EventCachingIntroduced           EventType = "caching_introduced"
	EventAlgorithmOptimization       EventType = "algorithm_optimization"
	EventDesignPatternApplied        EventType = "design_pattern_applied"
	EventErrorHandlingPatternAdopted EventType = "error_handling_pattern_adopted"
	EventLoggingIntroduced           EventType = "logging_introduced"
	EventCodeSimplification          EventType = "code_simplification"
	EventTypeAnnotationsIntroduced   EventType = "type_annotations_introduced"
)

// Layer 5b: LLM advisory.
const (
	EventAIDetectedRefactoring    EventType = "ai_detected_refactoring"
	EventAIDetectedOptimization   EventType = "ai_detected_optimization"
	EventAIDetectedSecurityChange EventType = "ai_detected_security_change"
	EventAIDetectedBehaviorChange EventType = "ai_detected_behavior_change"
	EventAIDetectedAlgorithmShift EventType = "ai_detected_algorithm_change"
	EventAIAdvisory               EventType = "ai_advisory"
)

// Event is the engine's sole output unit: an immutable value record describing
// one semantic change. Deterministic layers emit confidence 1.0; layers 5a/5b
// attach their own confidences and reasoning.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"event_type"`
	NodeID     NodeID    `json:"node_id"`
	Location   string    `json:"location"`
	Layer      Layer     `json:"layer"`
	Details    string    `json:"details"`
	Confidence float64   `json:"confidence"`
	Reasoning  string    `json:"reasoning,omitempty"`
	Impact     string    `json:"impact,omitempty"`
}

// NewEvent builds a deterministic-layer event with confidence 1.0.
func NewEvent(t EventType, nodeID NodeID, location string, layer Layer, details string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		NodeID:     nodeID,
		Location:   location,
		Layer:      layer,
		Details:    details,
		Confidence: 1.0,
	}
}
