package webhook

/* Caller identifies who is invoking a management operation
 * Identity and role resolution happen upstream; this package only sees the
 * owning org and whether the caller may manage webhooks
 */
type Caller struct {
	OrgID        string
	WebhookAdmin bool
}

// authorize returns ErrForbidden unless the caller is a webhook administrator
func (c Caller) authorize() error {
	if !c.WebhookAdmin {
		return ErrForbidden
	}
	return nil
}
