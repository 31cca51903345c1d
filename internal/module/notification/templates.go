package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

func renderTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}

// FormatPrice renders a minor-unit amount as a dollar string.
func FormatPrice(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

const emailStyle = `
<style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { font-size: 20px; font-weight: bold; margin-bottom: 16px; }
    .details { background: #f7f7f7; border-radius: 6px; padding: 16px; margin: 16px 0; }
    .details td { padding: 4px 12px 4px 0; }
    .button { display: inline-block; background: #4f46e5; color: #fff; padding: 10px 20px;
              border-radius: 6px; text-decoration: none; margin-top: 12px; }
    .footer { font-size: 12px; color: #999; margin-top: 24px; }
</style>
`

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8">` + emailStyle + `</head>
<body>
<div class="container">
    <div class="header">Thanks for your order, {{.CustomerName}}!</div>
    <p>We received your order and it is now waiting for payment confirmation.
    You'll get another email as soon as your video is ready.</p>
    <div class="details">
        <table>
            <tr><td>Order</td><td>{{.OrderID}}</td></tr>
            <tr><td>Duration</td><td>{{.Duration}} seconds</td></tr>
            <tr><td>Total</td><td>{{.Price}}</td></tr>
        </table>
    </div>
    <div class="footer">If you didn't place this order, please reply to this email.</div>
</div>
</body>
</html>
`

const adminOrderAlertTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8">` + emailStyle + `</head>
<body>
<div class="container">
    <div class="header">New paid order</div>
    <p>A new order has been paid and is ready for production.</p>
    <div class="details">
        <table>
            <tr><td>Order</td><td>{{.OrderID}}</td></tr>
            <tr><td>Customer</td><td>{{.CustomerName}} ({{.CustomerEmail}})</td></tr>
            <tr><td>Duration</td><td>{{.Duration}} seconds</td></tr>
            <tr><td>Total</td><td>{{.Price}}</td></tr>
            <tr><td>Payment method</td><td>{{.PaymentMethod}}</td></tr>
        </table>
    </div>
</div>
</body>
</html>
`

const orderCompletedTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8">` + emailStyle + `</head>
<body>
<div class="container">
    <div class="header">Your video is ready, {{.CustomerName}}!</div>
    <p>Order {{.OrderID}} is complete. Download your finished video below.
    The link stays valid for 24 hours; you can request a fresh one any time.</p>
    {{if .DownloadURL}}<a class="button" href="{{.DownloadURL}}">Download your video</a>{{end}}
    <div class="footer">Thanks for choosing us!</div>
</div>
</body>
</html>
`

const paymentFailedTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8">` + emailStyle + `</head>
<body>
<div class="container">
    <div class="header">Payment didn't go through</div>
    <p>Hi {{.CustomerName}}, the payment for order {{.OrderID}} was not completed.
    No money was taken. You can retry the payment from your order page.</p>
    <div class="footer">Need help? Just reply to this email.</div>
</div>
</body>
</html>
`
