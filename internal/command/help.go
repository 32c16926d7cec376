package command

import "strings"

// executeHelp shows the command list or help for one topic
func executeHelp(c *Command) string {
	return getHelpText(strings.ToLower(strings.Join(c.Args, " ")))
}

func getHelpText(topic string) string {
	switch topic {
	case "buy", "shop", "purchase", "list":
		return `BUY <quality|id> [count]
Buy forging materials from the shop.

Usage:
  shop             - List materials and prices
  buy common       - Buy one common material
  buy refined 3    - Buy three refined materials
  buy m3           - Buy by template id

A purchase you cannot afford is declined and costs nothing.`

	case "forge", "craft":
		return `FORGE <weapon|armor> <material...>
Forge equipment from materials in your bag.

Usage:
  forge weapon common common refined
  forge armor 1a2b3c4d rare

Materials can be named by quality or by the id shown in your bag.
At most three materials fit in the forge. The better the materials,
the better the quality and the more stat lines the item rolls.`

	case "equip", "unequip", "wear", "wield", "remove", "sell":
		return `EQUIP <id> / UNEQUIP <weapon|armor> / SELL <id>
Manage the equipment in your bag.

Usage:
  equip 1a2b3c4d   - Wear an item (by id prefix or bag number)
  unequip weapon   - Take off your weapon
  sell 2           - Sell the second item in your bag

Equipped items cannot be sold. Equipment you wear into the abyss
is destroyed if you die there.`

	case "enter", "descend":
		return `ENTER [floor]
Start an expedition into the abyss.

Usage:
  enter            - Start at the surface
  enter 2          - Start at depth 20 (ascension only)

Every boss you pass unlocks the floor below it as a starting point.`

	case "proceed", "next", "p", "fight", "strike", "attack", "hit":
		return `PROCEED / FIGHT / STRIKE
Move through the abyss.

Usage:
  proceed          - Go one depth deeper (aliases: next, p)
  fight            - Fight the waiting monster to the end
  strike           - Trade one round of blows

A boss waits on every tenth depth. Monsters must be beaten
before you can go deeper or withdraw.`

	case "withdraw", "retreat", "revive":
		return `WITHDRAW / REVIVE
Leave the abyss.

Usage:
  withdraw         - Return to town with everything you gathered
  revive           - After death, return to town

Dying forfeits the expedition's loot and destroys your equipped gear.`

	case "grant", "supplies":
		return `GRANT <gold|exp>
Claim a debug supply of gold or experience.
Only available when the server enables it.`
	}

	return `Available commands:

  Town:
    status           - Your level, stats and equipment
    stats            - Lifetime statistics
    bag              - Materials and equipment you carry
    shop, buy        - Buy forging materials
    forge            - Forge a weapon or armor
    equip, unequip   - Change your equipment
    sell             - Sell equipment for gold

  Abyss:
    enter [floor]    - Start an expedition
    proceed          - Go one depth deeper
    fight, strike    - Battle the waiting monster
    withdraw         - Bring your loot home
    revive           - Return to town after death
    log              - Recent expedition events

  Other:
    history          - Your recent expeditions
    leaderboard      - Boss slayers
    who              - Who is online
    save             - Save your progress
    quit             - Save and disconnect

Type 'help <command>' for more information.`
}
