package mail

import (
	"bytes"
	"html/template"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f7f7f7; padding: 24px;">
  <div style="max-width: 480px; margin: 0 auto; background: #fff; border-radius: 8px; padding: 24px;">
    <h2 style="color: #e63946;">Just Date</h2>
    <p>Hi {{.Name}},</p>
    <p>{{.Intro}}</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
    <p>This code expires in {{.Minutes}} minutes. If you did not request it, you can ignore this email.</p>
  </div>
</body>
</html>`))

// OTPMail 验证码邮件内容
type OTPMail struct {
	Name    string
	Intro   string
	Code    string
	Minutes int
}

// RenderOTP 渲染验证码邮件
func RenderOTP(data OTPMail) (string, error) {
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
