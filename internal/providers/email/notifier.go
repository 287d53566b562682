package email

import (
	"context"

	authdomain "github.com/smallbiznis/birracraft/internal/auth/domain"
)

// AccountNotifier sends account activation and password reset links.
type AccountNotifier struct {
	provider Provider
}

func NewAccountNotifier(provider Provider) authdomain.Notifier {
	return &AccountNotifier{provider: provider}
}

func (n *AccountNotifier) SendActivation(ctx context.Context, user authdomain.UserResponse, link string) error {
	return n.provider.SendTemplate(ctx, []string{user.Email}, TemplateActivation, map[string]any{
		"username": user.Username,
		"link":     link,
	})
}

func (n *AccountNotifier) SendPasswordReset(ctx context.Context, user authdomain.UserResponse, link string) error {
	return n.provider.SendTemplate(ctx, []string{user.Email}, TemplatePasswordReset, map[string]any{
		"username": user.Username,
		"link":     link,
	})
}
