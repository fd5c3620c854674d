package messaging

// Pipeline subjects. Every inbound subject has a corresponding
// dead-letter subject derived by DLQSubject.
const (
	// SubjectTransactionsCreated carries TransactionCreatedEvent payloads
	// from the transaction service into fraud detection.
	SubjectTransactionsCreated = "transactions.created"

	// SubjectFraudDetected carries FraudDetectedEvent payloads from fraud
	// detection into the alert service.
	SubjectFraudDetected = "fraud.detected"
)

// DLQSuffix is appended to a subject to form its dead-letter subject.
const DLQSuffix = ".dlq"

// DLQSubject derives the dead-letter subject for a source subject.
func DLQSubject(subject string) string {
	return subject + DLQSuffix
}
