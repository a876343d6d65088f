package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hampuff/internal/command"
	"hampuff/internal/propagation"
	"hampuff/internal/ratelimit"
	ratelimitstore "hampuff/internal/ratelimit/store"
	regsvc "hampuff/internal/registration/service"
	regstore "hampuff/internal/registration/store"
	"hampuff/pkg/domainerrors"
)

type fakeSource struct {
	report propagation.Report
	err    error
}

func (f *fakeSource) Report(context.Context) (propagation.Report, error) {
	return f.report, f.err
}

var testMessages = Messages{
	RegistrationURL: "https://hampuff.test/register",
	Consent:         "Your SMS request provides consent to send the reply.",
	Redirect:        "Wrong number. That might be an airport so please text Airpuff.",
	WrongNumber:     "Wrong number. Please waste someone else's time.",
}

func newCore(t *testing.T, source propagation.Source, limits map[ratelimit.EndpointClass]int) (*Service, *regsvc.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registrations := regsvc.New(regstore.NewMemoryStore(), logger, nil, nil)
	limiter := ratelimit.NewService(ratelimitstore.NewMemoryCounterStore(), logger, ratelimit.WithLimits(limits))
	core := New(registrations, source, limiter, command.NewParser(), testMessages, logger, nil)
	return core, registrations
}

func defaultLimits() map[ratelimit.EndpointClass]int {
	return ratelimit.DefaultLimits()
}

func optedInSender(t *testing.T, registrations *regsvc.Service, phone string) {
	t.Helper()
	_, _, err := registrations.Register(context.Background(), regsvc.RegisterParams{
		FullName: "Jane Doe", CallSign: "W1XYZ", PhoneRaw: phone, OptedIn: true,
	})
	require.NoError(t, err)
}

func TestHandleSMS_LegacyLookupForOptedInSender(t *testing.T) {
	source := &fakeSource{report: propagation.Report{
		Updated:   time.Date(2026, 8, 30, 14, 35, 0, 0, time.UTC),
		SolarFlux: "152", AIndex: "7", KIndex: "2", Sunspots: "83", MUF: "21.45",
	}}
	core, registrations := newCore(t, source, defaultLimits())
	optedInSender(t, registrations, "+15551112222")

	reply := core.HandleSMS(context.Background(), "+15551112222", "hampuffe")
	assert.Contains(t, reply, "[Hampuff - Eastern]")
	assert.Contains(t, reply, "Solar Flux  = 152")
	assert.Contains(t, reply, testMessages.Consent)
}

func TestHandleSMS_PropWithTimezone(t *testing.T) {
	source := &fakeSource{report: propagation.Report{
		Updated: time.Date(2026, 8, 30, 14, 35, 0, 0, time.UTC),
	}}
	core, registrations := newCore(t, source, defaultLimits())
	optedInSender(t, registrations, "+15551112222")

	reply := core.HandleSMS(context.Background(), "+15551112222", "  PROP pdt ")
	assert.Contains(t, reply, "[Hampuff - PDT]")
}

func TestHandleSMS_UnregisteredSenderIsRedirectedToRegistration(t *testing.T) {
	core, _ := newCore(t, &fakeSource{}, defaultLimits())

	reply := core.HandleSMS(context.Background(), "+15559990000", "prop EST")
	assert.Contains(t, reply, "not registered")
	assert.Contains(t, reply, testMessages.RegistrationURL)
}

func TestHandleSMS_OptedOutSenderIsGated(t *testing.T) {
	core, registrations := newCore(t, &fakeSource{}, defaultLimits())
	_, _, err := registrations.Register(context.Background(), regsvc.RegisterParams{
		FullName: "Jane Doe", CallSign: "W1XYZ", PhoneRaw: "+15551112222", OptedIn: false,
	})
	require.NoError(t, err)

	reply := core.HandleSMS(context.Background(), "+15551112222", "hampuffe")
	assert.Contains(t, reply, "not registered")
}

func TestHandleSMS_UpstreamFailureIsFriendly(t *testing.T) {
	source := &fakeSource{err: domainerrors.New(domainerrors.CodeUpstreamUnavailable, "feed down")}
	core, registrations := newCore(t, source, defaultLimits())
	optedInSender(t, registrations, "+15551112222")

	reply := core.HandleSMS(context.Background(), "+15551112222", "hampuffe")
	assert.Equal(t, "Sorry, unable to retrieve propagation data at this time.", reply)
}

func TestHandleSMS_HelpVariantsAreIdentical(t *testing.T) {
	core, _ := newCore(t, &fakeSource{}, defaultLimits())
	ctx := context.Background()

	help := core.HandleSMS(ctx, "+15551112222", "help")
	question := core.HandleSMS(ctx, "+15551112222", "?")
	assert.Equal(t, help, question)
	assert.Contains(t, help, "prop <TZ>")
}

func TestHandleSMS_RedirectAndProfanityAndUnknown(t *testing.T) {
	core, _ := newCore(t, &fakeSource{}, defaultLimits())
	ctx := context.Background()

	assert.Equal(t, testMessages.Redirect, core.HandleSMS(ctx, "+15551112222", "KBTV"))
	assert.Equal(t, "Go shit your pants", core.HandleSMS(ctx, "+15551112222", "shit"))
	assert.Equal(t, testMessages.WrongNumber, core.HandleSMS(ctx, "+15551112222", "hello world"))
	assert.Equal(t, "No message body received", core.HandleSMS(ctx, "+15551112222", "   "))
}

func TestHandleSMS_BadPropTimezoneGetsCorrectiveHelp(t *testing.T) {
	core, _ := newCore(t, &fakeSource{}, defaultLimits())

	reply := core.HandleSMS(context.Background(), "+15551112222", "prop XYZ")
	assert.Contains(t, reply, "Unknown timezone")
	assert.Contains(t, reply, "ChST")
}

func TestHandleSMS_StartStopLifecycle(t *testing.T) {
	core, registrations := newCore(t, &fakeSource{}, defaultLimits())
	ctx := context.Background()

	// STOP from a stranger succeeds without creating a record.
	reply := core.HandleSMS(ctx, "+15551112222", "stop")
	assert.Contains(t, reply, "opted out")
	_, err := registrations.FindByPhone(ctx, "+15551112222")
	assert.True(t, domainerrors.Is(err, domainerrors.CodeNotRegistered))

	// START before registering points at the registration page.
	reply = core.HandleSMS(ctx, "+15551112222", "start")
	assert.Contains(t, reply, testMessages.RegistrationURL)

	_, _, err = registrations.Register(ctx, regsvc.RegisterParams{
		FullName: "Jane Doe", CallSign: "W1XYZ", PhoneRaw: "+15551112222", OptedIn: false,
	})
	require.NoError(t, err)

	reply = core.HandleSMS(ctx, "+15551112222", "START")
	assert.Contains(t, reply, "opted in")
	assert.True(t, registrations.IsOptedIn(ctx, "+15551112222"))

	reply = core.HandleSMS(ctx, "+15551112222", "stop")
	assert.Contains(t, reply, "opted out")
	assert.False(t, registrations.IsOptedIn(ctx, "+15551112222"))
}

func TestHandleSMS_RateLimitedSenderGetsRetryMessage(t *testing.T) {
	core, _ := newCore(t, &fakeSource{}, map[ratelimit.EndpointClass]int{
		ratelimit.ClassLookup:   2,
		ratelimit.ClassOptState: 20,
	})
	ctx := context.Background()

	core.HandleSMS(ctx, "+15551112222", "help")
	core.HandleSMS(ctx, "+15551112222", "help")
	reply := core.HandleSMS(ctx, "+15551112222", "help")
	assert.Contains(t, reply, "hourly limit")

	// A different sender still has quota.
	other := core.HandleSMS(ctx, "+15559990000", "help")
	assert.Contains(t, other, "Hampuff commands")
}

func TestClassFor(t *testing.T) {
	assert.Equal(t, ratelimit.ClassLookup, ClassFor(command.KindPropagation))
	assert.Equal(t, ratelimit.ClassLookup, ClassFor(command.KindHelp))
	assert.Equal(t, ratelimit.ClassRegister, ClassFor(command.KindRegister))
	assert.Equal(t, ratelimit.ClassOptState, ClassFor(command.KindOptIn))
	assert.Equal(t, ratelimit.ClassOptState, ClassFor(command.KindOptOut))
}
