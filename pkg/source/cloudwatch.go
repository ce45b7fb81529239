package source

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// LogsClient is the subset of the CloudWatch Logs API we use.
type LogsClient interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// CloudWatchOptions selects which events to read from a log group.
type CloudWatchOptions struct {
	Group        string
	StreamPrefix string
	Start        time.Time
	End          time.Time
}

// CloudWatchSource reads engine output that was shipped to a CloudWatch
// Logs group, one event per line. Events are fetched page by page and
// served in the interleaved order CloudWatch returns them. No server-side
// filter pattern is applied; every event is returned so the caller's own
// matching sees the same lines a local file would contain.
type CloudWatchSource struct {
	client  LogsClient
	opts    CloudWatchOptions
	buf     []*Line
	next    *string
	done    bool
	lineNum int
}

// NewCloudWatchSource creates a source over one log group.
func NewCloudWatchSource(client LogsClient, opts CloudWatchOptions) (*CloudWatchSource, error) {
	if opts.Group == "" {
		return nil, errors.New("log group required")
	}
	return &CloudWatchSource{client: client, opts: opts}, nil
}

// Next returns the next event as a line. It returns io.EOF once every
// page has been drained.
func (s *CloudWatchSource) Next(ctx context.Context) (*Line, error) {
	for len(s.buf) == 0 {
		if s.done {
			return nil, io.EOF
		}
		if err := s.fetchPage(ctx); err != nil {
			return nil, err
		}
	}
	ln := s.buf[0]
	s.buf = s.buf[1:]
	return ln, nil
}

func (s *CloudWatchSource) fetchPage(ctx context.Context) error {
	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(s.opts.Group),
		NextToken:    s.next,
		Interleaved:  aws.Bool(true),
	}
	if s.opts.StreamPrefix != "" {
		input.LogStreamNamePrefix = aws.String(s.opts.StreamPrefix)
	}
	if !s.opts.Start.IsZero() {
		input.StartTime = aws.Int64(s.opts.Start.UnixMilli())
	}
	if !s.opts.End.IsZero() {
		input.EndTime = aws.Int64(s.opts.End.UnixMilli())
	}

	out, err := s.client.FilterLogEvents(ctx, input)
	if err != nil {
		return err
	}

	for _, e := range out.Events {
		s.lineNum++
		s.buf = append(s.buf, &Line{
			Text:   aws.ToString(e.Message),
			Source: s.opts.Group + "/" + aws.ToString(e.LogStreamName),
			Num:    s.lineNum,
		})
	}

	if out.NextToken == nil || (s.next != nil && aws.ToString(out.NextToken) == aws.ToString(s.next)) {
		s.done = true
		return nil
	}
	s.next = out.NextToken
	return nil
}

// Close is a no-op; the underlying client is shared and owned by the caller.
func (s *CloudWatchSource) Close() error {
	return nil
}

// NewCloudWatchClient loads AWS configuration for the given region and
// shared profile and returns a CloudWatch Logs client. Both may be empty
// to use default resolution.
func NewCloudWatchClient(ctx context.Context, region, profile string) (*cloudwatchlogs.Client, error) {
	var cfgOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		cfgOpts = append(cfgOpts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, err
	}
	return cloudwatchlogs.NewFromConfig(cfg), nil
}
