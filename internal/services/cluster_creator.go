package services

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/metrics"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// CreatorState is the phase of a cluster creation form
type CreatorState string

const (
	CreatorEditing    CreatorState = "editing"
	CreatorSubmitting CreatorState = "submitting"
	CreatorSuccess    CreatorState = "success"
)

// ClusterNameMaxLength bounds the cluster name, which becomes a DNS label
const ClusterNameMaxLength = 54

// CreateFailedTitle is the alert title for a rejected creation
const CreateFailedTitle = "Failed to create new cluster"

// Field error messages of the creation form
const (
	MsgRequired           = "Required"
	MsgNameFormat         = "Name must consist of lower-case letters, numbers and hyphens. It must start and end with a letter or number."
	MsgNameLength         = "Cannot be longer than 54 characters."
	MsgPullSecretRequired = "Pull secret must be provided."
	MsgPullSecretFormat   = "Invalid pull secret format. You must use your Red Hat account's pull secret."
	MsgSSHKeyFormat       = "SSH public key must consist of \"[TYPE] key [[EMAIL]]\", supported types are: ssh-rsa, ssh-ed25519, ecdsa-[VARIANT]"
	MsgHAMode             = "Must be Full or None"
)

var dnsLabelRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("dnslabel", func(fl validator.FieldLevel) bool {
		return dnsLabelRegex.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("sshkey", func(fl validator.FieldLevel) bool {
		return ValidSSHPublicKey(fl.Field().String())
	})
}

// ValidSSHPublicKey reports whether every non-empty line of keys is an
// authorized_keys entry
func ValidSSHPublicKey(keys string) bool {
	found := false
	for _, line := range strings.Split(keys, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			return false
		}
		found = true
	}
	return found
}

// ClusterForm is the user input of a new cluster
type ClusterForm struct {
	Name                 string                      `json:"name" yaml:"name" validate:"required,max=54,dnslabel"`
	OpenshiftVersion     string                      `json:"openshift_version" yaml:"openshift_version" validate:"required"`
	PullSecret           string                      `json:"pull_secret" yaml:"pull_secret" validate:"required,json"`
	HighAvailabilityMode models.HighAvailabilityMode `json:"high_availability_mode,omitempty" yaml:"high_availability_mode,omitempty" validate:"omitempty,oneof=Full None"`
	BaseDNSDomain        string                      `json:"base_dns_domain,omitempty" yaml:"base_dns_domain,omitempty"`
	SSHPublicKey         string                      `json:"ssh_public_key,omitempty" yaml:"ssh_public_key,omitempty" validate:"omitempty,sshkey"`
}

// Params converts the form to the installer request body
func (f ClusterForm) Params() models.ClusterCreateParams {
	return models.ClusterCreateParams{
		Name:                 f.Name,
		OpenshiftVersion:     f.OpenshiftVersion,
		PullSecret:           f.PullSecret,
		HighAvailabilityMode: f.HighAvailabilityMode,
		BaseDNSDomain:        f.BaseDNSDomain,
		SSHPublicKey:         strings.TrimSpace(f.SSHPublicKey),
	}
}

var fieldMessages = map[string]string{
	"name.required":          MsgRequired,
	"name.max":               MsgNameLength,
	"name.dnslabel":          MsgNameFormat,
	"pull_secret.required":   MsgPullSecretRequired,
	"pull_secret.json":       MsgPullSecretFormat,
	"ssh_public_key":         MsgSSHKeyFormat,
	"high_availability_mode": MsgHAMode,
}

// ValidateForm checks the form without contacting the installer. It returns
// nil or errors.FieldErrors keyed by JSON field name.
func ValidateForm(form ClusterForm) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := errors.FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := fields[field]; seen {
			continue
		}
		msg, ok := fieldMessages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = fieldMessages[field]
		}
		if !ok {
			msg = MsgRequired
		}
		fields[field] = msg
	}
	return fields
}

// Submission is the outcome of a Submit call
type Submission struct {
	State   CreatorState    `json:"state"`
	Cluster *models.Cluster `json:"cluster,omitempty"`
}

// VersionOption is one selectable OpenShift version
type VersionOption struct {
	Value        string `json:"value" yaml:"value"`
	Label        string `json:"label" yaml:"label"`
	SupportLevel string `json:"support_level,omitempty" yaml:"support_level,omitempty"`
}

// FormDefaults is the initial state of the creation form
type FormDefaults struct {
	Form     ClusterForm     `json:"form"`
	Versions []VersionOption `json:"versions"`
}

// ClusterCreator drives the cluster creation form
type ClusterCreator struct {
	api      installer.API
	defaults config.ClusterDefaultsConfig
	log      logger.Interface

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewClusterCreator creates a new cluster creation workflow
func NewClusterCreator(api installer.API, defaults config.ClusterDefaultsConfig, log logger.Interface) *ClusterCreator {
	return &ClusterCreator{
		api:      api,
		defaults: defaults,
		log:      log.WithField("service", "cluster-creator"),
		inFlight: make(map[string]struct{}),
	}
}

// State returns the phase of the submitter's form
func (c *ClusterCreator) State(submitter string) CreatorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[submitter]; ok {
		return CreatorSubmitting
	}
	return CreatorEditing
}

func (c *ClusterCreator) begin(submitter string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inFlight[submitter]; ok {
		return false
	}
	c.inFlight[submitter] = struct{}{}
	return true
}

func (c *ClusterCreator) end(submitter string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, submitter)
}

// Submit validates the form and creates the cluster. submitter identifies the
// form being submitted; a second Submit for it while one is running fails
// with ErrInFlight. Validation failures come back as errors.FieldErrors and
// installer failures are also added to alerts.
func (c *ClusterCreator) Submit(ctx context.Context, submitter string, form ClusterForm, dispatch alerts.Dispatcher) (*Submission, error) {
	if !c.begin(submitter) {
		return &Submission{State: CreatorSubmitting}, ErrInFlight
	}
	defer c.end(submitter)

	dispatch.Clear()

	if err := ValidateForm(form); err != nil {
		metrics.ClusterCreations.WithLabelValues("invalid").Inc()
		return &Submission{State: CreatorEditing}, err
	}

	if taken, err := c.nameTaken(ctx, form.Name); err != nil {
		c.log.WithError(err).Warn("Cluster name uniqueness check failed, continuing", "name", form.Name)
	} else if taken {
		metrics.ClusterCreations.WithLabelValues("invalid").Inc()
		return &Submission{State: CreatorEditing}, errors.FieldErrors{
			"name": fmt.Sprintf("Name %q is already taken.", form.Name),
		}
	}

	cluster, err := c.api.CreateCluster(ctx, form.Params())
	if err != nil {
		metrics.ClusterCreations.WithLabelValues("failed").Inc()
		dispatch.Add(alerts.Alert{Title: CreateFailedTitle, Message: errors.Message(err)})
		c.log.WithError(err).Error("Failed to create cluster", "name", form.Name)
		return &Submission{State: CreatorEditing}, err
	}

	metrics.ClusterCreations.WithLabelValues("created").Inc()
	c.log.Info("Created cluster", "name", cluster.Name, "cluster_id", cluster.ID)
	return &Submission{State: CreatorSuccess, Cluster: cluster}, nil
}

func (c *ClusterCreator) nameTaken(ctx context.Context, name string) (bool, error) {
	existing, err := c.api.ListClusters(ctx)
	if err != nil {
		return false, err
	}
	for _, cluster := range existing {
		if cluster.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Defaults returns the initial form together with the selectable versions
func (c *ClusterCreator) Defaults(ctx context.Context) (*FormDefaults, error) {
	var (
		versions   models.OpenshiftVersions
		pullSecret string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		versions, err = c.api.ListOpenshiftVersions(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pullSecret, err = c.defaults.PullSecret()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	options := SortVersions(versions)
	return &FormDefaults{
		Form: ClusterForm{
			OpenshiftVersion:     DefaultVersion(options, c.defaults.OpenshiftVersion),
			PullSecret:           pullSecret,
			HighAvailabilityMode: models.HighAvailabilityModeFull,
		},
		Versions: options,
	}, nil
}

// SortVersions returns the versions newest first
func SortVersions(versions models.OpenshiftVersions) []VersionOption {
	options := make([]VersionOption, 0, len(versions))
	for key, v := range versions {
		label := v.DisplayName
		if label == "" {
			label = "OpenShift " + key
		}
		options = append(options, VersionOption{Value: key, Label: label, SupportLevel: v.SupportLevel})
	}
	sort.Slice(options, func(i, j int) bool {
		return compareVersions(options[i].Value, options[j].Value) > 0
	})
	return options
}

// DefaultVersion picks preferred when offered, else the first option, else ""
func DefaultVersion(options []VersionOption, preferred string) string {
	for _, o := range options {
		if o.Value == preferred {
			return preferred
		}
	}
	if len(options) > 0 {
		return options[0].Value
	}
	return ""
}

// compareVersions compares dotted versions numerically, falling back to a
// string comparison for non-numeric parts
func compareVersions(a, b string) int {
	pa, pb := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var sa, sb string
		if i < len(pa) {
			sa = pa[i]
		}
		if i < len(pb) {
			sb = pb[i]
		}
		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case sa != sb:
			return strings.Compare(sa, sb)
		}
	}
	return 0
}
