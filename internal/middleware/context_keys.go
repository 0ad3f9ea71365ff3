package middleware

import "context"

// subjectKey stores the authenticated caller's JWT subject.
const subjectKey = contextKey("subject")

// GetSubjectFromCtx retrieves the authenticated caller, if authentication is enabled.
func GetSubjectFromCtx(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok && subject != ""
}
