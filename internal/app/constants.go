package app

// MinPlayersToStartGame is the smallest composition a game can start with:
// a spymaster and an operative on each team.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const MinPlayersToStartGame = 4
