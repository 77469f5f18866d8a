// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/openfga/go-sdk/client"
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/canonical/learning-service/internal/authorization"
	"github.com/canonical/learning-service/internal/logging"
	"github.com/canonical/learning-service/internal/monitoring"
	"github.com/canonical/learning-service/internal/openfga"
	"github.com/canonical/learning-service/internal/tracing"
)

const (
	StoreName = "learning-service"

	// keys match the envconfig names read by serve
	configMapStoreKey = "OPENFGA_STORE_ID"
	configMapModelKey = "OPENFGA_AUTHORIZATION_MODEL_ID"
)

type fgaModelWriter interface {
	CreateStore(context.Context, string) (string, error)
	SetStoreID(context.Context, string) error
	WriteModel(context.Context, *client.ClientWriteAuthorizationModelRequest) (string, error)
}

type fgaBootstrap struct {
	StoreID string `json:"store_id"`
	ModelID string `json:"model_id"`

	createdStore bool
}

var createFgaModelCmd = &cobra.Command{
	Use:   "create-fga-model",
	Short: "Bootstrap the openfga store and tenant membership model",
	Long: `Writes the tenant membership model mirrored by the identity webhooks.

A store named "learning-service" is created unless --fga-store-id is given. The
resulting ids can be pushed into a kubernetes ConfigMap consumed by serve.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printOnly, _ := cmd.Flags().GetBool("print-model")
		if printOnly {
			return printAuthorizationModel(cmd.OutOrStdout())
		}

		apiURL, _ := cmd.Flags().GetString("fga-api-url")
		apiToken, _ := cmd.Flags().GetString("fga-api-token")
		storeID, _ := cmd.Flags().GetString("fga-store-id")
		format, _ := cmd.Flags().GetString("format")
		verbose, _ := cmd.Flags().GetBool("verbose")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		configMapResource, _ := cmd.Flags().GetString("store-k8s-configmap-resource")
		kubeconfigPath, _ := cmd.Flags().GetString("kubeconfig")

		if apiURL == "" || apiToken == "" {
			return fmt.Errorf("--fga-api-url and --fga-api-token are required unless --print-model is set")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		fga, err := newModelWriter(apiURL, apiToken, verbose)
		if err != nil {
			return err
		}

		result, err := bootstrapModel(ctx, fga, storeID)
		if err != nil {
			return err
		}

		if configMapResource != "" {
			clientset, err := newKubernetesClient(kubeconfigPath)
			if err != nil {
				return err
			}

			if err := upsertStoreConfigMap(ctx, clientset, configMapResource, result); err != nil {
				return fmt.Errorf("failed to update configmap: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "ConfigMap %s updated\n", configMapResource)
		}

		return writeBootstrap(cmd.OutOrStdout(), format, result)
	},
}

func init() {
	rootCmd.AddCommand(createFgaModelCmd)

	createFgaModelCmd.Flags().String("fga-api-url", "", "The openfga API URL")
	createFgaModelCmd.Flags().String("fga-api-token", "", "The openfga API token")
	createFgaModelCmd.Flags().String("fga-store-id", "", "The openfga store to write the model to, a new store is created when empty")
	createFgaModelCmd.Flags().String("format", "text", "Output format (text, env or json)")
	createFgaModelCmd.Flags().BoolP("verbose", "v", false, "Enable openfga client debug output")
	createFgaModelCmd.Flags().Bool("print-model", false, "Print the authorization model as json and exit")
	createFgaModelCmd.Flags().Duration("timeout", 30*time.Second, "Deadline for the whole bootstrap")
	createFgaModelCmd.Flags().String("store-k8s-configmap-resource", "", "ConfigMap receiving the store and model ids, format: namespace/name")
	createFgaModelCmd.Flags().String("kubeconfig", "", "Path to the kubeconfig file (optional, defaults to in-cluster config)")
}

func printAuthorizationModel(out io.Writer) error {
	model := authorization.NewAuthorizationModelProvider("v0").GetModel()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(model)
}

func newModelWriter(apiURL, apiToken string, verbose bool) (*openfga.Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid openfga url %q, expected scheme://host", apiURL)
	}

	logger := logging.NewNoopLogger()

	// model id is empty until the write below, so the config is not validated
	cfg := openfga.Config{
		ApiScheme: u.Scheme,
		ApiHost:   u.Host,
		ApiToken:  apiToken,
		Debug:     verbose,
		Tracer:    tracing.NewNoopTracer(),
		Monitor:   monitoring.NewNoopMonitor(StoreName, logger),
		Logger:    logger,
	}

	return openfga.NewClient(&cfg), nil
}

func bootstrapModel(ctx context.Context, fga fgaModelWriter, storeID string) (*fgaBootstrap, error) {
	result := new(fgaBootstrap)
	result.StoreID = storeID

	if storeID == "" {
		id, err := fga.CreateStore(ctx, StoreName)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}

		result.StoreID = id
		result.createdStore = true
	}

	if err := fga.SetStoreID(ctx, result.StoreID); err != nil {
		return nil, fmt.Errorf("failed to switch to store %s: %w", result.StoreID, err)
	}

	model := authorization.NewAuthorizationModelProvider("v0").GetModel()

	modelID, err := fga.WriteModel(
		ctx,
		&client.ClientWriteAuthorizationModelRequest{
			TypeDefinitions: model.TypeDefinitions,
			SchemaVersion:   model.SchemaVersion,
			Conditions:      model.Conditions,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write model: %w", err)
	}

	result.ModelID = modelID

	return result, nil
}

func writeBootstrap(out io.Writer, format string, result *fgaBootstrap) error {
	switch format {
	case "json":
		return json.NewEncoder(out).Encode(result)
	case "env":
		_, err := fmt.Fprintf(out, "%s=%s\n%s=%s\n", configMapStoreKey, result.StoreID, configMapModelKey, result.ModelID)
		return err
	case "text":
		if result.createdStore {
			fmt.Fprintf(out, "Created store: %s\n", result.StoreID)
		}

		_, err := fmt.Fprintf(out, "Created model: %s\n", result.ModelID)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newKubernetesClient(kubeconfigPath string) (kubernetes.Interface, error) {
	var (
		config *rest.Config
		err    error
	)

	switch {
	case kubeconfigPath != "":
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	default:
		config, err = rest.InClusterConfig()
		if err != nil {
			// outside a cluster, use the default loading rules ($KUBECONFIG, ~/.kube/config)
			config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
				clientcmd.NewDefaultClientConfigLoadingRules(),
				&clientcmd.ConfigOverrides{},
			).ClientConfig()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return clientset, nil
}

func upsertStoreConfigMap(ctx context.Context, clientset kubernetes.Interface, resource string, result *fgaBootstrap) error {
	namespace, name, ok := strings.Cut(resource, "/")
	if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid configmap resource %q, expected namespace/name", resource)
	}

	configMaps := clientset.CoreV1().ConfigMaps(namespace)

	cm, err := configMaps.Get(ctx, name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
			Data: map[string]string{
				configMapStoreKey: result.StoreID,
				configMapModelKey: result.ModelID,
			},
		}

		if _, err := configMaps.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create configmap %s: %w", resource, err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get configmap %s: %w", resource, err)
	}

	if cm.Data == nil {
		cm.Data = make(map[string]string)
	}

	cm.Data[configMapStoreKey] = result.StoreID
	cm.Data[configMapModelKey] = result.ModelID

	if _, err := configMaps.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update configmap %s: %w", resource, err)
	}

	return nil
}
