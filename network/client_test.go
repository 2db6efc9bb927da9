package network

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func testClient(registry *Registry) *Client {
	client := NewClient(registry)
	client.Forever = false
	client.Retries = 2
	client.MinTimeout = time.Millisecond
	return client
}

func TestClientGet(t *testing.T) {
	Convey("Client.Get", t, func() {
		registry := NewRegistry()
		client := testClient(registry)

		Convey("returns the body on success", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"ok":true}`))
			}))
			defer server.Close()

			resp, err := client.Get(server.URL, RequestConfig{})

			So(err, ShouldBeNil)
			So(resp.Status, ShouldEqual, http.StatusOK)
			So(string(resp.Body), ShouldEqual, `{"ok":true}`)
		})

		Convey("encodes query params", func() {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.RawQuery
			}))
			defer server.Close()

			_, err := client.Get(server.URL, RequestConfig{
				Params: url.Values{"segments": []string{"true"}},
			})

			So(err, ShouldBeNil)
			So(got, ShouldEqual, "segments=true")
		})

		Convey("classifies a 4xx response as unknown without retrying", func() {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			_, err := client.Get(server.URL, RequestConfig{})

			So(err, ShouldNotBeNil)
			So(IsCancel(err), ShouldBeFalse)
			So(IsConnection(err), ShouldBeFalse)
			So(atomic.LoadInt32(&hits), ShouldEqual, 1)
		})

		Convey("classifies an unreachable host as connection and retries", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			retries := 0
			client.OnRetry = func(err error, attempt int) { retries++ }

			_, err := client.Get(server.URL, RequestConfig{})

			So(err, ShouldNotBeNil)
			So(IsConnection(err), ShouldBeTrue)
			So(retries, ShouldEqual, client.Retries)
		})

		Convey("classifies an abort through the registry as cancel", func() {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				<-release
			}))
			defer server.Close()
			defer close(release)

			done := make(chan error, 1)
			go func() {
				_, err := client.Get(server.URL, RequestConfig{SignalID: "probe"})
				done <- err
			}()

			for registry.Count("probe") == 0 {
				time.Sleep(time.Millisecond)
			}
			registry.Abort("probe")

			err := <-done
			So(err, ShouldNotBeNil)
			So(IsCancel(err), ShouldBeTrue)
		})

		Convey("RetryWhen replaces the default policy", func() {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&hits, 1) < 3 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				_, _ = w.Write([]byte("recovered"))
			}))
			defer server.Close()

			client.RetryWhen = func(err error, attempt int) bool {
				return attempt < 5
			}

			resp, err := client.Get(server.URL, RequestConfig{})

			So(err, ShouldBeNil)
			So(string(resp.Body), ShouldEqual, "recovered")
			So(atomic.LoadInt32(&hits), ShouldEqual, 3)
		})
	})
}

func TestClientHooks(t *testing.T) {
	Convey("Client request hooks", t, func() {
		registry := NewRegistry()
		client := testClient(registry)

		Convey("BeforeRequest and AfterRequest run once per attempt", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
			}))
			defer server.Close()

			before, after := 0, 0
			_, err := client.Get(server.URL, RequestConfig{
				BeforeRequest: func(r *http.Request) { before++ },
				AfterRequest:  func(resp *Response, err error) { after++ },
			})

			So(err, ShouldBeNil)
			So(before, ShouldEqual, 1)
			So(after, ShouldEqual, 1)
		})

		Convey("OnConnectionError fires for each transport failure", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close()

			connErrs := 0
			_, err := client.Get(server.URL, RequestConfig{
				OnConnectionError: func(err error) { connErrs++ },
			})

			So(err, ShouldNotBeNil)
			So(connErrs, ShouldEqual, client.Retries+1)
		})

		Convey("custom headers reach the server", func() {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("X-Probe")
			}))
			defer server.Close()

			_, err := client.Get(server.URL, RequestConfig{
				Header: http.Header{"X-Probe": []string{"yes"}},
			})

			So(err, ShouldBeNil)
			So(got, ShouldEqual, "yes")
		})
	})
}

func TestClientPost(t *testing.T) {
	Convey("Client.Post", t, func() {
		registry := NewRegistry()
		client := testClient(registry)

		Convey("sends the body with the given content type", func() {
			var gotType, gotBody string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotType = r.Header.Get("Content-Type")
				buf := make([]byte, r.ContentLength)
				_, _ = r.Body.Read(buf)
				gotBody = string(buf)
			}))
			defer server.Close()

			_, err := client.Post(server.URL, "application/json", []byte(`{"a":1}`), RequestConfig{})

			So(err, ShouldBeNil)
			So(gotType, ShouldEqual, "application/json")
			So(gotBody, ShouldEqual, `{"a":1}`)
		})
	})
}
