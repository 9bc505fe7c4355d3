package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/content-router/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

const validConfig = `
server:
  address: ":8080"
  environment: "dev"

health_check:
  interval: "30s"
  timeout: "5s"

fetch:
  timeout: "10s"

sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
    region: "eu-west"
  - kind: "content-addressed-gateway"
    endpoint: "https://gw.example.com"
    priority: 2

names:
  - name: "docs"
    content_hash: "ipfs://QmDocs"
  - name: "blog"
    path: "/blog"

logging:
  level: "info"
`

var _ = Describe("Config", func() {
	var tempDir string

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
		Expect(os.Chdir(tempDir)).To(Succeed())
	}

	BeforeEach(func() {
		viper.Reset()

		var err error
		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("with valid config file", func() {
			BeforeEach(func() {
				writeConfig(validConfig)
			})

			It("loads configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
			})

			It("parses the source list", func() {
				cfg, _ := config.Load()
				Expect(cfg.Sources).To(HaveLen(2))
				Expect(cfg.Sources[0].Kind).To(Equal("cdn"))
				Expect(cfg.Sources[0].Endpoint).To(Equal("https://edge.example.com"))
				Expect(cfg.Sources[0].Priority).To(Equal(1))
				Expect(cfg.Sources[0].Region).To(Equal("eu-west"))
			})

			It("parses the name table", func() {
				cfg, _ := config.Load()
				Expect(cfg.Names).To(HaveLen(2))
				Expect(cfg.Names[0].ContentHash).To(Equal("ipfs://QmDocs"))
				Expect(cfg.Names[1].Path).To(Equal("/blog"))
			})

			It("parses timing into durations", func() {
				cfg, _ := config.Load()

				interval, err := cfg.ProbeInterval()
				Expect(err).NotTo(HaveOccurred())
				Expect(interval).To(Equal(30 * time.Second))

				timeout, err := cfg.ProbeTimeout()
				Expect(err).NotTo(HaveOccurred())
				Expect(timeout).To(Equal(5 * time.Second))

				fetchTimeout, err := cfg.FetchTimeout()
				Expect(err).NotTo(HaveOccurred())
				Expect(fetchTimeout).To(Equal(10 * time.Second))
			})
		})

		Context("with defaults", func() {
			It("fills probe and fetch timing when omitted", func() {
				writeConfig(`
sources:
  - kind: "origin"
    endpoint: "http://localhost:9000"
    priority: 0
`)
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.HealthCheck.Interval).To(Equal("30s"))
				Expect(cfg.HealthCheck.Timeout).To(Equal("5s"))
				Expect(cfg.Fetch.Timeout).To(Equal("10s"))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))
				Expect(cfg.Server.Address).To(Equal(":8080"))
			})

			It("fails without any sources", func() {
				Expect(os.Chdir(tempDir)).To(Succeed())
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		DescribeTable("rejects invalid configuration",
			func(mutation string) {
				writeConfig(mutation)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			},
			Entry("unknown source kind", `
sources:
  - kind: "carrier-pigeon"
    endpoint: "https://x"
    priority: 1
`),
			Entry("endpoint without scheme", `
sources:
  - kind: "cdn"
    endpoint: "edge.example.com"
    priority: 1
`),
			Entry("endpoint with unsupported scheme", `
sources:
  - kind: "cdn"
    endpoint: "ftp://edge.example.com"
    priority: 1
`),
			Entry("negative priority", `
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: -1
`),
			Entry("bad probe interval", `
health_check:
  interval: "soon"
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
`),
			Entry("bad fetch timeout", `
fetch:
  timeout: "whenever"
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
`),
			Entry("bad log level", `
logging:
  level: "loud"
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
`),
			Entry("bad environment", `
server:
  environment: "production!"
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
`),
			Entry("name without a name", `
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
names:
  - content_hash: "QmX"
`),
			Entry("name path without leading slash", `
sources:
  - kind: "cdn"
    endpoint: "https://edge.example.com"
    priority: 1
names:
  - name: "docs"
    path: "docs"
`),
		)
	})
})
