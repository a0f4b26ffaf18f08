package e2e

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/botzner/internal/config"
	"github.com/imamik/botzner/internal/platform/host/hosttest"
	"github.com/imamik/botzner/internal/provisioning"
	"github.com/imamik/botzner/internal/provisioning/files"
)

func sum(content string) string {
	s := sha256.Sum256([]byte(content))
	return hex.EncodeToString(s[:])
}

// scriptFreshHost scripts a machine that has never been provisioned.
func scriptFreshHost(runner *hosttest.Runner) {
	runner.Respond("getent passwd", "", errors.New("exit status 2"))
	runner.Respond("test -d", "", errors.New("exit status 1"))
	runner.Respond("sha256sum", "", errors.New("exit status 1"))
	runner.Respond("test -e", "", errors.New("exit status 1"))
	runner.Respond("stat -c %U", "root\n", nil)
	runner.Respond("is-enabled", "disabled\n", errors.New("exit status 1"))
	runner.Respond("is-active", "inactive\n", errors.New("exit status 3"))
}

// scriptConvergedHost scripts a machine a previous apply fully set up.
func scriptConvergedHost(cfg *config.Config, runner *hosttest.Runner) {
	env, err := files.RenderEnvironment(cfg.Environment)
	Expect(err).NotTo(HaveOccurred())
	unit, err := files.UnitContent(cfg)
	Expect(err).NotTo(HaveOccurred())

	runner.Respond("sha256sum '"+cfg.EnvironmentFilePath()+"'",
		fmt.Sprintf("%s  %s\n", sum(env), cfg.EnvironmentFilePath()), nil)
	runner.Respond("sha256sum '"+cfg.UnitFilePath()+"'",
		fmt.Sprintf("%s  %s\n", sum(unit), cfg.UnitFilePath()), nil)
	runner.Respond("stat -c %U", cfg.Service.User+"\n", nil)
	runner.Respond("is-enabled", "enabled\n", nil)
	runner.Respond("is-active", "active\n", nil)
}

var _ = Describe("Applying a deployment", func() {
	var (
		cfg    *config.Config
		runner *hosttest.Runner
	)

	BeforeEach(func() {
		cfg = newConfig()
		runner = hosttest.NewRunner()
	})

	Context("on a fresh host", func() {
		BeforeEach(func() {
			scriptFreshHost(runner)
		})

		It("builds the whole deployment from nothing", func() {
			state := apply(cfg, runner, false)

			By("creating the system user")
			Expect(runner.Ran("useradd --system --no-create-home")).To(BeTrue())
			Expect(runner.Ran("--shell /usr/sbin/nologin 'github_trending_bot'")).To(BeTrue())

			By("creating both directories and handing the data dir to the service user")
			Expect(runner.Ran("mkdir -p '/var/lib/github_trending_bot'")).To(BeTrue())
			Expect(runner.Ran("mkdir -p '/etc/github_trending_bot.d'")).To(BeTrue())
			Expect(runner.Ran("chown 'github_trending_bot': '/var/lib/github_trending_bot'")).To(BeTrue())

			By("placing the environment file root-only")
			env := runner.UploadedTo("/etc/github_trending_bot.d/environment")
			Expect(env).NotTo(BeNil())
			Expect(env.Mode).To(Equal("0600"))
			Expect(string(env.Content)).To(ContainSubstring("TELEGRAM_TOKEN"))

			By("installing the unit file and reloading systemd")
			unit := runner.UploadedTo("/lib/systemd/system/github_trending_bot.service")
			Expect(unit).NotTo(BeNil())
			Expect(unit.Mode).To(Equal("0644"))
			Expect(runner.Ran("systemctl daemon-reload")).To(BeTrue())

			By("seeding the watermark and handing it to the service user")
			watermark := runner.UploadedTo("/var/lib/github_trending_bot/last_update")
			Expect(watermark).NotTo(BeNil())
			Expect(string(watermark.Content)).To(Equal("0\n"))
			Expect(runner.Ran("chown 'github_trending_bot': '/var/lib/github_trending_bot/last_update'")).To(BeTrue())

			By("installing the bot from its git source")
			Expect(runner.Ran("pip3 install --upgrade 'git+https://github.com/dbarashev/github_trending_bot.git@master'")).To(BeTrue())

			By("enabling, starting and restarting the service")
			Expect(runner.Ran("systemctl enable 'github_trending_bot'")).To(BeTrue())
			Expect(runner.Ran("systemctl start 'github_trending_bot'")).To(BeTrue())
			Expect(runner.CountRuns("systemctl restart 'github_trending_bot'")).To(Equal(1))

			By("reporting every step as changed")
			Expect(state.Count(provisioning.StatusOK)).To(BeZero())
			Expect(state.Count(provisioning.StatusChanged)).To(BeNumerically(">=", 9))
		})

		It("only probes in dry-run mode", func() {
			state := apply(cfg, runner, true)

			Expect(runner.Uploads).To(BeEmpty())
			Expect(runner.Ran("useradd")).To(BeFalse())
			Expect(runner.Ran("mkdir")).To(BeFalse())
			Expect(runner.Ran("chown")).To(BeFalse())
			Expect(runner.Ran("install")).To(BeFalse())
			Expect(runner.Ran("systemctl enable")).To(BeFalse())
			Expect(runner.Ran("systemctl restart")).To(BeFalse())
			Expect(state.Count(provisioning.StatusChanged)).To(BeZero())
			Expect(state.Count(provisioning.StatusWouldChange)).To(BeNumerically(">=", 9))
		})
	})

	Context("on a converged host", func() {
		BeforeEach(func() {
			scriptConvergedHost(cfg, runner)
		})

		It("leaves existing state alone and bounces the service", func() {
			state := apply(cfg, runner, false)

			Expect(runner.Uploads).To(BeEmpty())
			Expect(runner.Ran("useradd")).To(BeFalse())
			Expect(runner.Ran("mkdir")).To(BeFalse())
			Expect(runner.Ran("chown")).To(BeFalse())
			Expect(runner.Ran("systemctl daemon-reload")).To(BeFalse())
			Expect(runner.Ran("systemctl enable ")).To(BeFalse())
			Expect(runner.CountRuns("systemctl restart 'github_trending_bot'")).To(Equal(1))
			Expect(state.Count(provisioning.StatusOK)).To(BeNumerically(">=", 8))
		})

		It("never rewrites the watermark even when the seed changes", func() {
			cfg.Watermark.Seed = "1700000000"

			apply(cfg, runner, false)

			Expect(runner.UploadedTo("/var/lib/github_trending_bot/last_update")).To(BeNil())
		})
	})

	Context("on a host with a drifted environment file", func() {
		BeforeEach(func() {
			// Stale checksum for the environment file wins over the
			// converged script registered after it.
			runner.Respond("sha256sum '"+cfg.EnvironmentFilePath()+"'",
				fmt.Sprintf("%s  %s\n", sum("stale"), cfg.EnvironmentFilePath()), nil)
			scriptConvergedHost(cfg, runner)
		})

		It("rewrites only the drifted file", func() {
			apply(cfg, runner, false)

			Expect(runner.UploadedTo(cfg.EnvironmentFilePath())).NotTo(BeNil())
			Expect(runner.UploadedTo(cfg.UnitFilePath())).To(BeNil())
			// The unit itself is in sync, so no reload.
			Expect(runner.Ran("systemctl daemon-reload")).To(BeFalse())
		})
	})
})
