package events

const (
	SubjectAssessmentCompleted    = "governance.assessment.completed"
	SubjectQuestionnaireProcessed = "governance.questionnaire.processed"
)
