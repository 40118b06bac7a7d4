package config

// SMTPConfig configures the mailer used by the notification consumer.
// An empty Host disables email delivery; notifications are then only
// written to the notification log.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
}

// LoadSMTPConfig reads SMTP_* variables.
func LoadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:      envStr("SMTP_HOST", ""),
		Port:      envInt("SMTP_PORT", 587),
		User:      envStr("SMTP_USER", ""),
		Password:  envStr("SMTP_PASSWORD", ""),
		FromName:  envStr("SMTP_FROM_NAME", "Reservas"),
		FromEmail: envStr("SMTP_FROM_EMAIL", "no-reply@localhost"),
	}
}

// Enabled reports whether a mail server is configured.
func (c SMTPConfig) Enabled() bool { return c.Host != "" }
