package domain

// transitions enumerates the legal status moves. The store does not
// enforce this table; callers validate before patching status. Keeping
// enforcement out of the store is intentional and callers must not
// bypass ValidateTransition on status writes.
var transitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPending:   {InvoiceStatusGenerated, InvoiceStatusSent, InvoiceStatusCanceled, InvoiceStatusFailed},
	InvoiceStatusGenerated: {InvoiceStatusSent, InvoiceStatusCanceled, InvoiceStatusFailed},
	InvoiceStatusSent:      {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCanceled, InvoiceStatusFailed, InvoiceStatusRefunded},
	InvoiceStatusOverdue:   {InvoiceStatusPaid, InvoiceStatusCanceled, InvoiceStatusFailed},
	InvoiceStatusPaid:      {InvoiceStatusRefunded},
}

// CanTransition reports whether moving from one status to another is
// legal.
func CanTransition(from, to InvoiceStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks the transition table and the document
// invariant: an invoice may not move into "sent" without a rendered
// document reference.
func ValidateTransition(invoice Invoice, to InvoiceStatus) error {
	if !CanTransition(invoice.Status, to) {
		return ErrInvalidTransition
	}
	if to == InvoiceStatusSent && !invoice.HasDocument() {
		return ErrDocumentMissing
	}
	return nil
}
