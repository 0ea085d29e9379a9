package entity

// Record field names, as serialized. Used for confidence keys, warnings and
// validation errors.
const (
	FieldClientName             = "clientName"
	FieldProjectName            = "projectName"
	FieldProjectDescription     = "projectDescription"
	FieldScopeOfWork            = "scopeOfWork"
	FieldEvaluationCriteria     = "evaluationCriteria"
	FieldRequiredDeliverables   = "requiredDeliverables"
	FieldImportantDates         = "importantDates"
	FieldSubmissionRequirements = "submissionRequirements"
)

// ExtractedFields lists the fields every extractor assigns a confidence to.
var ExtractedFields = []string{
	FieldClientName,
	FieldProjectName,
	FieldProjectDescription,
	FieldScopeOfWork,
	FieldEvaluationCriteria,
	FieldRequiredDeliverables,
	FieldImportantDates,
	FieldSubmissionRequirements,
}
