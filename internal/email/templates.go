package email

import (
	"fmt"

	"eugenestrat/internal/models"
)

func (s *Service) generateActivationHTML(user *models.User, activationToken string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Welcome to Eugene Strat</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            line-height: 1.6;
            color: #e0e0e0;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #1a1a2e;
        }
        .container {
            background-color: #16213e;
            padding: 40px;
            border-radius: 12px;
        }
        .header {
            text-align: center;
            margin-bottom: 30px;
        }
        .logo {
            font-size: 28px;
            font-weight: bold;
            color: #e94560;
            margin-bottom: 10px;
        }
        .welcome-message {
            font-size: 24px;
            color: #e94560;
            margin-bottom: 20px;
        }
        .content {
            font-size: 16px;
            margin-bottom: 30px;
        }
        .cta-button {
            display: inline-block;
            background-color: #e94560;
            color: white;
            padding: 12px 24px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 500;
        }
        .footer {
            margin-top: 40px;
            padding-top: 20px;
            border-top: 1px solid #2a2a4a;
            font-size: 14px;
            color: #8888aa;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Eugene Strat</div>
            <div class="welcome-message">Welcome %s!</div>
        </div>

        <div class="content">
            <p>Thank you for joining Eugene Strat, your strategic command center for deep work!</p>

            <p><strong>To complete your registration, please activate your account by clicking the link below:</strong></p>

            <p style="text-align: center; margin: 30px 0;">
                <a href="%s/api/activate/%s" class="cta-button">Activate Your Account</a>
            </p>

            <p style="font-size: 14px; color: #8888aa;">This activation link will expire in 24 hours.</p>

            <p>With Eugene Strat, you can:</p>
            <ul>
                <li>Map your projects on a cost/benefit matrix</li>
                <li>Run timed deep focus sessions against them</li>
                <li>Track your focus hours, streaks and records</li>
                <li>Earn XP for every project shipped and session finished</li>
            </ul>
        </div>

        <div class="footer">
            <p>Stay focused!</p>
            <p>The Eugene Strat Team</p>
            <p style="margin-top: 20px; font-size: 12px;">
                This email was sent to %s. If you have any questions, feel free to reach out to us.
            </p>
        </div>
    </div>
</body>
</html>`, user.Username, s.baseURL, activationToken, user.Email)
}

func (s *Service) generateActivationText(user *models.User, activationToken string) string {
	return fmt.Sprintf(`Welcome %s!

Thank you for joining Eugene Strat, your strategic command center for deep work!

To complete your registration, please activate your account by visiting:
%s/api/activate/%s

This activation link will expire in 24 hours.

With Eugene Strat, you can:
- Map your projects on a cost/benefit matrix
- Run timed deep focus sessions against them
- Track your focus hours, streaks and records
- Earn XP for every project shipped and session finished

Stay focused!
The Eugene Strat Team

This email was sent to %s. If you have any questions, feel free to reach out to us.
`, user.Username, s.baseURL, activationToken, user.Email)
}
