// Package kv implements the kv subcommand.
package kv

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/wirescope/wirescope/internal/cli/root"
	"github.com/wirescope/wirescope/internal/kvstore"
)

// action is an operation on an open store.
type action func(store kvstore.Store, w io.Writer) error

func init() {
	cmd := root.Command("kv", "Inspect and modify the key/value store.")

	getCmd := cmd.Command("get", "Print the value of a key.")
	getStore := getCmd.Arg("store", "Store name").Required().String()
	getKey := getCmd.Arg("key", "Key name").Required().String()
	getCmd.Action(withStore(func(store kvstore.Store, w io.Writer) error {
		return get(store, w, *getStore, *getKey)
	}))

	setCmd := cmd.Command("set", "Set the value of a key.")
	setStore := setCmd.Arg("store", "Store name").Required().String()
	setKey := setCmd.Arg("key", "Key name").Required().String()
	setValue := setCmd.Arg("value", "Value").Required().String()
	setCmd.Action(withStore(func(store kvstore.Store, w io.Writer) error {
		return store.Set(*setStore, *setKey, *setValue)
	}))

	rmCmd := cmd.Command("rm", "Remove a key.")
	rmStore := rmCmd.Arg("store", "Store name").Required().String()
	rmKey := rmCmd.Arg("key", "Key name").Required().String()
	rmCmd.Action(withStore(func(store kvstore.Store, w io.Writer) error {
		return store.Remove(*rmStore, *rmKey)
	}))

	hasCmd := cmd.Command("has", "Print whether a key exists.")
	hasStore := hasCmd.Arg("store", "Store name").Required().String()
	hasKey := hasCmd.Arg("key", "Key name").Required().String()
	hasCmd.Action(withStore(func(store kvstore.Store, w io.Writer) error {
		return has(store, w, *hasStore, *hasKey)
	}))

	keysCmd := cmd.Command("keys", "List the keys of a store.")
	keysStore := keysCmd.Arg("store", "Store name").Required().String()
	keysCmd.Action(withStore(func(store kvstore.Store, w io.Writer) error {
		return keys(store, w, *keysStore)
	}))

	clearCmd := cmd.Command("clear", "Remove all the keys of a store.")
	clearStore := clearCmd.Arg("store", "Store name").Required().String()
	clearCmd.Action(withStore(func(store kvstore.Store, w io.Writer) error {
		return store.Clear(*clearStore)
	}))
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(fn action) kingpin.Action {
	return func(_ *kingpin.ParseContext) error {
		cfg, err := root.Init()
		if err != nil {
			log.WithError(err).Error("cannot load the configuration")
			return err
		}
		store, err := root.OpenStore(cfg)
		if err != nil {
			log.WithError(err).Error("cannot open the key/value store")
			return err
		}
		defer store.Close()
		if err := fn(store, os.Stdout); err != nil {
			log.WithError(err).Error("kv failed")
			return err
		}
		return nil
	}
}

func get(store kvstore.Store, w io.Writer, name, key string) error {
	value, err := store.Get(name, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, value)
	return nil
}

func has(store kvstore.Store, w io.Writer, name, key string) error {
	found, err := store.Has(name, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, found)
	return nil
}

func keys(store kvstore.Store, w io.Writer, name string) error {
	list, err := store.Keys(name)
	if err != nil {
		return err
	}
	for _, key := range list {
		fmt.Fprintln(w, key)
	}
	return nil
}
