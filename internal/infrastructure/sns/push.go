package sns

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/calligro/registration-api/internal/config"
	"github.com/calligro/registration-api/internal/domain"
)

// PushSender fans one notification out to many device tokens.
// Tokens are SNS platform-endpoint ARNs registered by the mobile apps.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, msg domain.PushMessage) (*domain.MulticastResult, error)
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (PushSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

// gcmPayload is the FCM-side message body carried inside the SNS envelope.
type gcmPayload struct {
	Notification struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data,omitempty"`
}

// buildMessage renders the platform-keyed envelope SNS expects when
// MessageStructure is "json": a mandatory "default" entry plus a GCM entry
// whose value is the FCM payload serialized as a string.
func buildMessage(msg domain.PushMessage) (string, error) {
	var p gcmPayload
	p.Notification.Title = msg.Title
	p.Notification.Body = msg.Body
	p.Data = msg.Data
	gcm, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	envelope, err := json.Marshal(map[string]string{
		"default": msg.Title + ": " + msg.Body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return "", err
	}
	return string(envelope), nil
}

// SendMulticast publishes msg to every token, one Publish per endpoint.
// A failed token never aborts the batch; its error lands in the outcome list.
func (s *sender) SendMulticast(ctx context.Context, tokens []string, msg domain.PushMessage) (*domain.MulticastResult, error) {
	body, err := buildMessage(msg)
	if err != nil {
		return nil, err
	}

	res := &domain.MulticastResult{}
	for _, token := range tokens {
		_, err := s.client.Publish(ctx, &sns.PublishInput{
			TargetArn:        aws.String(token),
			Message:          aws.String(body),
			MessageStructure: aws.String("json"),
		})
		if err != nil {
			res.FailureCount++
		} else {
			res.SuccessCount++
		}
		res.Outcomes = append(res.Outcomes, domain.SendOutcome{Token: token, Error: err})
	}
	return res, nil
}
