package main

import (
	"fmt"

	"github.com/nikolat/nostr-unyu/responder"

	cli "github.com/urfave/cli/v2"
	"github.com/xlab/treeprint"
)

var rulesCmd = &cli.Command{
	Name:  "rules",
	Usage: "print the rule tables and gate sets",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "patterns",
			Usage: "include each rule's pattern",
		},
	},
	Action: func(cctx *cli.Context) error {
		tree, err := rulesTree(responder.DefaultRules(), cctx.Bool("patterns"))
		if err != nil {
			return err
		}
		fmt.Println(tree.String())
		return nil
	},
}

var (
	treeModes = []responder.Mode{responder.ModeNormal, responder.ModeReply}
	treeSets  = []string{responder.SetAllowedChannels, responder.SetDeniedAuthors, responder.SetDisallowedTags}
)

func rulesTree(rs *responder.RuleSet, patterns bool) (treeprint.Tree, error) {
	tree := treeprint.NewWithRoot("unyu")
	for _, mode := range treeModes {
		rules, err := rs.Rules(mode)
		if err != nil {
			return nil, err
		}
		branch := tree.AddMetaBranch(len(rules), mode.String())
		for _, rule := range rules {
			if s, ok := rule.Matcher.(fmt.Stringer); ok && patterns {
				branch.AddMetaNode(rule.Name, s.String())
			} else {
				branch.AddNode(rule.Name)
			}
		}
	}

	sets := responder.DefaultSets()
	branch := tree.AddBranch("sets")
	for _, name := range treeSets {
		members := sets.Members(name)
		set := branch.AddMetaBranch(len(members), name)
		for _, m := range members {
			set.AddNode(m)
		}
	}
	return tree, nil
}
