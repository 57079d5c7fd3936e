package dailyquote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newDeviceServer(t *testing.T, check func(path string, body map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer dot_app_test" {
			t.Errorf("auth header: %q", got)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if check != nil {
			check(r.URL.Path, body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code":0,"message":"ok"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDevice(t *testing.T, srv *httptest.Server, opts ...DeviceOption) *DeviceClient {
	t.Helper()
	base := []DeviceOption{WithDeviceBaseURL(srv.URL + "/"), WithDeviceRateLimiter(nil), WithDefaultDeviceID("DEF")}
	c, err := NewDeviceClient("dot_app_test", append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewDeviceClientRequiresToken(t *testing.T) {
	if _, err := NewDeviceClient("  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestPushWidget_Text(t *testing.T) {
	var got map[string]interface{}
	srv := newDeviceServer(t, func(path string, body map[string]interface{}) {
		if path != deviceTextEndpoint {
			t.Errorf("path=%s", path)
		}
		got = body
	})
	resp, err := newTestDevice(t, srv).PushWidget(context.Background(), BuildWidget(sampleRecord(), fixedClock()), PushText)
	if err != nil {
		t.Fatalf("PushWidget: %v", err)
	}
	if resp.Code != 0 || resp.Message != "ok" || resp.StatusCode != http.StatusOK {
		t.Fatalf("resp=%+v", resp)
	}
	if got["deviceId"] != "DEF" || got["title"] != "DAILY QUOTE・SAT, 17TH OCT" ||
		got["message"] != "Stay hungry." || got["signature"] != "Steve Jobs" || got["refreshNow"] != true {
		t.Fatalf("payload=%v", got)
	}
}

func TestPushWidget_ErrorAsText(t *testing.T) {
	var got map[string]interface{}
	srv := newDeviceServer(t, func(_ string, body map[string]interface{}) { got = body })
	if _, err := newTestDevice(t, srv).PushWidget(context.Background(), ErrorWidget(errors.New("offline")), ""); err != nil {
		t.Fatal(err)
	}
	if got["title"] != "Daily Quote" || got["message"] != "offline" {
		t.Fatalf("payload=%v", got)
	}
	if _, ok := got["signature"]; ok {
		t.Fatal("empty signature should be omitted")
	}
}

func TestPushWidget_Image(t *testing.T) {
	var image string
	srv := newDeviceServer(t, func(path string, body map[string]interface{}) {
		if path != deviceImageEndpoint {
			t.Errorf("path=%s", path)
		}
		image, _ = body["image"].(string)
	})
	if _, err := newTestDevice(t, srv).PushWidget(context.Background(), BuildWidget(sampleRecord(), fixedClock()), PushImage); err != nil {
		t.Fatalf("PushWidget: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		t.Fatalf("image not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("image not png: %v", err)
	}
	if img.Bounds().Dx() != ImageWidth || img.Bounds().Dy() != ImageHeight {
		t.Fatalf("bounds=%v", img.Bounds())
	}
}

func TestPushWidget_UnknownMode(t *testing.T) {
	c, err := NewDeviceClient("dot_app_test", WithDefaultDeviceID("D"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.PushWidget(context.Background(), ErrorWidget(nil), PushMode("smoke")); err == nil {
		t.Fatal("expected unknown mode error")
	}
	if _, err := c.PushWidget(context.Background(), nil, PushText); err == nil {
		t.Fatal("expected nil widget error")
	}
}

func TestDeviceID_DefaultAndOverride(t *testing.T) {
	var ids []string
	srv := newDeviceServer(t, func(_ string, body map[string]interface{}) {
		ids = append(ids, body["deviceId"].(string))
	})
	c := newTestDevice(t, srv)
	if _, err := c.SendText(context.Background(), TextRequest{Message: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SendText(context.Background(), TextRequest{DeviceID: "OVR", Message: "b"}); err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "DEF" || ids[1] != "OVR" {
		t.Fatalf("ids=%v", ids)
	}

	c.SetDefaultDeviceID(" ")
	if _, err := c.SendText(context.Background(), TextRequest{}); !errors.Is(err, ErrDeviceIDMissing) {
		t.Fatalf("want ErrDeviceIDMissing, got %v", err)
	}
}

func TestSendImage_MissingPayload(t *testing.T) {
	c, err := NewDeviceClient("dot_app_test", WithDefaultDeviceID("D"), WithDeviceRateLimiter(nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.SendImage(context.Background(), ImageRequest{}); !errors.Is(err, ErrImagePayloadMissing) {
		t.Fatalf("want ErrImagePayloadMissing, got %v", err)
	}
}

func TestDevice_PlainTextResponseAndError(t *testing.T) {
	serve := func(status int) string {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = io.WriteString(w, "设备不在线")
		}))
		t.Cleanup(srv.Close)
		return srv.URL
	}
	newClient := func(base string) *DeviceClient {
		c, err := NewDeviceClient("dot_app_test", WithDeviceBaseURL(base), WithDeviceRateLimiter(nil), WithDefaultDeviceID("D"))
		if err != nil {
			t.Fatal(err)
		}
		return c
	}

	resp, err := newClient(serve(http.StatusOK)).SendText(context.Background(), TextRequest{Message: "m"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message != "设备不在线" {
		t.Fatalf("plain text message=%q", resp.Message)
	}

	_, err = newClient(serve(http.StatusForbidden)).SendText(context.Background(), TextRequest{Message: "m"})
	if !IsAuthError(err) {
		t.Fatalf("want auth error, got %v", err)
	}
}
